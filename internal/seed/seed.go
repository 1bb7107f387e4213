package seed

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

const defaultPictureSize = 128

var (
	backgroundColor = color.NRGBA{R: 0xd9, G: 0xdd, B: 0xe3, A: 0xff}
	silhouetteColor = color.NRGBA{R: 0x9a, G: 0xa3, B: 0xaf, A: 0xff}
)

// EnsureDefaultPicture writes the placeholder profile picture into imageDir
// unless a file with that name already exists. It returns the file path.
func EnsureDefaultPicture(imageDir, name string, lgr zerolog.Logger) (string, error) {
	if name == "" {
		return "", errors.New("default picture name is empty")
	}

	target := filepath.Join(imageDir, filepath.Base(name))
	if _, err := os.Stat(target); err == nil {
		lgr.Debug().Str("path", target).Msg("Default picture already present")
		return target, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check default picture: %w", err)
	}

	if err := os.MkdirAll(imageDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	if err := imaging.Save(placeholder(defaultPictureSize), target); err != nil {
		return "", fmt.Errorf("failed to write default picture: %w", err)
	}

	lgr.Info().Str("path", target).Msg("Default picture created")
	return target, nil
}

// placeholder draws a flat head-and-shoulders silhouette
func placeholder(size int) *image.NRGBA {
	img := imaging.New(size, size, backgroundColor)

	head := imaging.New(size*3/8, size*3/8, silhouetteColor)
	img = imaging.Overlay(img, head, image.Pt((size-head.Bounds().Dx())/2, size/6), 1.0)

	shoulders := imaging.New(size*5/8, size/3, silhouetteColor)
	img = imaging.Overlay(img, shoulders, image.Pt((size-shoulders.Bounds().Dx())/2, size-shoulders.Bounds().Dy()), 1.0)

	// Soften the block edges
	return imaging.Blur(img, 1.5)
}
