package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string) (*metadata.Resource, error) {
	mCfg, err := parseMaterialFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     mCfg.Name,
		FullPath: path,
		Type:     metadata.ResourceTypeMaterial,
		Data:     mCfg,
	}, nil
}

// Unload releases a material resource. The parsed config stays valid for
// whoever already holds it.
func (ml *MaterialLoader) Unload(res *metadata.Resource) error {
	if res.Type != metadata.ResourceTypeMaterial {
		return fmt.Errorf("material loader cannot unload resource type %d", res.Type)
	}
	core.LogDebug("unloaded material '%s' from '%s'", res.Name, res.FullPath)
	return nil
}

func parseMaterialFile(filename string) (*metadata.MaterialConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	materialConfig, err := ParseMaterial(data)
	if err != nil {
		return nil, fmt.Errorf("material file '%s': %w", filename, err)
	}
	// the file name is the fallback name
	if materialConfig.Name == "" {
		materialConfig.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return materialConfig, nil
}

// ParseMaterial decodes a TOML material definition. Missing keys keep the
// defaults of a new scene material, unknown keys are logged and skipped.
func ParseMaterial(data []byte) (*metadata.MaterialConfig, error) {
	materialConfig := &metadata.MaterialConfig{
		DiffuseAlbedo: [4]float32{1, 1, 1, 1},
		FresnelR0:     [3]float32{0.01, 0.01, 0.01},
		Roughness:     0.25,
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(materialConfig); err != nil {
		var strict *toml.StrictMissingError
		if !errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidMaterial, err)
		}
		for _, e := range strict.Errors {
			core.LogError("Unknown key '%s' found in material. Skipping...", strings.Join(e.Key(), "."))
		}
	}

	// Perform validation
	if err := validateMaterial(materialConfig); err != nil {
		return nil, err
	}
	return materialConfig, nil
}

func validateMaterial(material *metadata.MaterialConfig) error {
	// Check that DiffuseAlbedo values are within [0.0, 1.0] range
	for _, v := range material.DiffuseAlbedo {
		if !inRange(v) {
			return fmt.Errorf("%w: diffuse_albedo values must be between 0.0 and 1.0", core.ErrInvalidMaterial)
		}
	}
	for _, v := range material.FresnelR0 {
		if !inRange(v) {
			return fmt.Errorf("%w: fresnel_r0 values must be between 0.0 and 1.0", core.ErrInvalidMaterial)
		}
	}
	if !inRange(material.Roughness) {
		return fmt.Errorf("%w: roughness must be between 0.0 and 1.0", core.ErrInvalidMaterial)
	}
	return nil
}

// Check if a float32 value is within [0.0, 1.0]
func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
