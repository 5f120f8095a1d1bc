package handler

import (
	"net/http"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
)

// ListContainers returns the container catalog with each image's default build command
func ListContainers(w http.ResponseWriter, r *http.Request) {
	images := config.ContainerImages()
	result := make([]model.ContainerImage, 0, len(images))
	for _, img := range images {
		result = append(result, model.ContainerImage{
			Image:        img,
			BuildCommand: service.DefaultBuildCommand(img),
			Default:      img == config.DefaultContainerImage,
		})
	}
	SendSuccess(w, result)
}

// BuildCommand returns the default build command for ?image=
func BuildCommand(w http.ResponseWriter, r *http.Request) {
	image := r.URL.Query().Get("image")
	if image == "" {
		SendError(w, "image is required", http.StatusBadRequest)
		return
	}
	SendSuccess(w, model.ContainerImage{
		Image:        image,
		BuildCommand: service.DefaultBuildCommand(image),
		Default:      image == config.DefaultContainerImage,
		Custom:       !config.IsKnownContainerImage(image),
	})
}
