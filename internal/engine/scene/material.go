package scene

// Material holds the surface parameters of a mesh.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Texture     *Texture
	Opacity     float32
	Transparent bool
	DoubleSided bool
}

// NewMaterial returns an opaque white material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		BaseColor: [4]float32{1, 1, 1, 1},
		Opacity:   1,
	}
}

// Texture holds decoded RGBA8 image data, uploaded lazily by the
// renderer.
type Texture struct {
	Width  int
	Height int
	Pixels []byte
}
