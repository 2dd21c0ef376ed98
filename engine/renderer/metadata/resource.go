package metadata

/** @brief Resource types the asset manager knows how to load. */
type ResourceType int

const (
	/** @brief Files the asset manager ignores. */
	ResourceTypeNone ResourceType = iota
	/** @brief Material definition (.toml). */
	ResourceTypeMaterial
)

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The type of the resource. */
	Type ResourceType
	/** @brief The resource data, *MaterialConfig for materials. */
	Data interface{}
}

/**
 * @brief Material definition as stored on disk. Texture names refer to
 * descriptors allocated by the application.
 */
type MaterialConfig struct {
	/** @brief The name of the material, matched against scene materials. */
	Name string `toml:"name"`
	/** @brief The diffuse texture name. */
	DiffuseMapName string `toml:"diffuse_map"`
	/** @brief The optional alpha map name. */
	AlphaMapName string `toml:"alpha_map"`
	/** @brief The diffuse albedo as rgba. */
	DiffuseAlbedo [4]float32 `toml:"diffuse_albedo"`
	/** @brief Reflectance at normal incidence. */
	FresnelR0 [3]float32 `toml:"fresnel_r0"`
	/** @brief Surface roughness in [0, 1]. */
	Roughness float32 `toml:"roughness"`
}
