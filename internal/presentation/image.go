package presentation

import "github.com/utafrali/productview/internal/domain"

// PlaceholderImageURL is used when a product has no usable image.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1544829885-87ac47101088?ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D&auto=format&fit=crop&w=1000&q=80"

// SelectImage returns the URL of the first "ambiente" image, else the first
// image, else PlaceholderImageURL. The result is never empty.
func SelectImage(images []domain.Image) string {
	if len(images) == 0 {
		return PlaceholderImageURL
	}

	chosen := images[0]
	for _, img := range images {
		if img.Type == domain.ImageTypeAmbiente {
			chosen = img
			break
		}
	}

	if chosen.URL == "" {
		return PlaceholderImageURL
	}
	return chosen.URL
}
