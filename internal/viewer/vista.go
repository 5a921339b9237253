// Package viewer implements the presentation state of the model
// viewer: which viewpoint the object is shown from and which display
// modes (wireframe, transparency, shading) are active.
package viewer

// Vista is a named viewpoint. The angles are degrees of rotation
// around the world X, Y and Z axes, applied in that order after the
// object is turned to face the camera.
type Vista struct {
	Name string
	X    float32
	Y    float32
	Z    float32
}

// The stock viewpoints.
var (
	VistaFrontal    = Vista{Name: "frontal"}
	VistaPosterior  = Vista{Name: "posterior", Y: 180}
	VistaSuperior   = Vista{Name: "superior", X: 90}
	VistaInferior   = Vista{Name: "inferior", X: -90}
	VistaIzquierda  = Vista{Name: "izquierda", Y: 90}
	VistaDerecha    = Vista{Name: "derecha", Y: -90}
	VistaIsometrica = Vista{Name: "isometrica", X: 30, Y: 30}
)

// Vistas lists the stock viewpoints in presentation order.
var Vistas = []Vista{
	VistaFrontal,
	VistaPosterior,
	VistaSuperior,
	VistaInferior,
	VistaIzquierda,
	VistaDerecha,
	VistaIsometrica,
}

// VistaByName returns the stock vista with the given name.
func VistaByName(name string) (Vista, bool) {
	for _, v := range Vistas {
		if v.Name == name {
			return v, true
		}
	}
	return Vista{}, false
}
