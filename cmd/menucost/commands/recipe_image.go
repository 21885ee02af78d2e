package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var recipeImageCmd = &cobra.Command{
	Use:   "image <slug> <file>",
	Short: "Upload a recipe photo and attach it to a recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipeImage(cmd, args[0], args[1])
	},
}

func init() {
	recipeCmd.AddCommand(recipeImageCmd)
}

func runRecipeImage(cmd *cobra.Command, slug, path string) error {
	a := current
	if a.images == nil {
		return withCode(ExitInputInvalid, fmt.Errorf("no image storage configured; set MINIO_ENDPOINT to enable recipe images"))
	}

	r, err := a.svcs.Recipes.FindBySlug(cmd.Context(), slug)
	if err != nil {
		return withCode(ExitInputInvalid, fmt.Errorf("recipe %q: %w", slug, err))
	}

	file, err := os.Open(path)
	if err != nil {
		return withCode(ExitInputInvalid, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return withCode(ExitInputInvalid, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := filepath.Base(path)
	if _, err := a.images.UploadRecipeImage(cmd.Context(), slug, objectName, contentType, info.Size(), file); err != nil {
		return withCode(ExitRuntimeFailure, fmt.Errorf("uploading image: %w", err))
	}

	r.ImageKey = fmt.Sprintf("recipes/%s/%s", slug, objectName)
	if err := a.svcs.Recipes.Upsert(cmd.Context(), r); err != nil {
		return withCode(ExitRuntimeFailure, fmt.Errorf("attaching image to recipe %q: %w", slug, err))
	}

	fmt.Printf("%s: image attached (%s)\n", slug, r.ImageKey)

	viewURL, err := a.images.PresignedURL(cmd.Context(), r.ImageKey)
	if err != nil {
		a.log.Warn().Err(err).Str("slug", slug).Msg("presigning image url failed")
		return nil
	}
	fmt.Printf("%s: preview url %s\n", slug, viewURL.String())
	return nil
}
