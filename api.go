package mandel

//go:generate irpc api.go

// ImgProvider hands out a fully rendered image.
type ImgProvider interface {
	GetImage() (IntensityGrid, error)
}
