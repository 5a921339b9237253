package loader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/glbview/internal/engine/scene"
)

// decodeMaterials converts the document materials index-aligned, so
// primitives can look them up by position. Texture decode failures
// leave the material untextured rather than failing the whole load.
func decodeMaterials(doc *gltf.Document, baseDir string) []*scene.Material {
	out := make([]*scene.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := scene.NewMaterial(gm.Name)
		mat.DoubleSided = gm.DoubleSided

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				mat.BaseColor = [4]float32{
					float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3]),
				}
			}
			if tex := pbr.BaseColorTexture; tex != nil {
				mat.Texture = readTexture(doc, tex.Index, baseDir)
			}
		}

		if gm.AlphaMode == gltf.AlphaBlend {
			mat.Transparent = true
			mat.Opacity = mat.BaseColor[3]
		}

		out[i] = mat
	}
	return out
}

// readTexture resolves a texture index down to decoded RGBA pixels.
// Any failure along the way returns nil.
func readTexture(doc *gltf.Document, idx int, baseDir string) *scene.Texture {
	if idx < 0 || idx >= len(doc.Textures) {
		return nil
	}
	gt := doc.Textures[idx]
	if gt.Source == nil || *gt.Source < 0 || *gt.Source >= len(doc.Images) {
		return nil
	}

	data, err := readImage(doc, doc.Images[*gt.Source], baseDir)
	if err != nil {
		return nil
	}
	tex, err := decodeImage(data)
	if err != nil {
		return nil
	}
	return tex
}

// readImage fetches the raw bytes of a glTF image, which may live in
// a buffer view (GLB), a data URI, or an external file next to the
// document.
func readImage(doc *gltf.Document, img *gltf.Image, baseDir string) ([]byte, error) {
	if img.BufferView != nil {
		return readBufferView(doc, *img.BufferView)
	}

	if strings.HasPrefix(img.URI, "data:") {
		comma := strings.IndexByte(img.URI, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		data, err := base64.StdEncoding.DecodeString(img.URI[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		return data, nil
	}

	if img.URI == "" {
		return nil, fmt.Errorf("image has no buffer view and no URI")
	}
	rel, err := url.PathUnescape(img.URI)
	if err != nil {
		rel = img.URI
	}
	data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}
	return data, nil
}

func readBufferView(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d of %d", idx, len(doc.BufferViews))
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d of %d", bv.Buffer, len(doc.Buffers))
	}
	data := doc.Buffers[bv.Buffer].Data
	if bv.ByteOffset+bv.ByteLength > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer size %d", idx, len(data))
	}
	return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

// decodeImage turns PNG or JPEG bytes into RGBA pixels ready for
// upload.
func decodeImage(data []byte) (*scene.Texture, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	return &scene.Texture{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: rgba.Pix,
	}, nil
}
