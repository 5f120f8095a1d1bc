package config

// DefaultContainerImage is preselected on the new-site form.
const DefaultContainerImage = "node:18"

// ContainerImages returns the container images offered for new sites
func ContainerImages() []string {
	return []string{
		"node:18",
		"node:16",
		"python:3.10",
		"python:3.9",
		"deno:1.30",
		"docker:latest",
	}
}

// IsKnownContainerImage reports whether image is in the catalog
func IsKnownContainerImage(image string) bool {
	for _, img := range ContainerImages() {
		if img == image {
			return true
		}
	}
	return false
}

// NextContainerImage returns the catalog entry after image, wrapping around.
// Unknown images restart at the first entry.
func NextContainerImage(image string) string {
	images := ContainerImages()
	for i, img := range images {
		if img == image {
			return images[(i+1)%len(images)]
		}
	}
	return images[0]
}
