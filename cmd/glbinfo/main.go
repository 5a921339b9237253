// glbinfo is a CLI utility for inspecting glTF and GLB model files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/glbview/internal/engine/loader"
	"github.com/Faultbox/glbview/internal/engine/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tree":
		cmdTree(args)
	case "meshes":
		cmdMeshes(args)
	case "animations", "anim":
		cmdAnimations(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glbinfo - glTF/GLB model inspector

Usage:
  glbinfo <command> [options]

Commands:
  info <model>              Show model summary and bounds
  tree <model> [-depth N]   Print the scene graph
  meshes <model>            List meshes with geometry and material info
  animations <model>        List animation clips

Examples:
  glbinfo info duck.glb
  glbinfo tree scene.gltf -depth 2
  glbinfo meshes duck.glb`)
}

// open loads a model file or exits with an error message.
func open(path string) *scene.Object {
	obj, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return obj
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbinfo info <model>")
		os.Exit(1)
	}

	obj := open(args[0])

	nodes := 0
	vertices := 0
	materials := make(map[*scene.Material]bool)
	obj.Root.Traverse(func(n *scene.Node) {
		nodes++
		if n.Kind == scene.KindMesh && n.Mesh != nil {
			vertices += n.Mesh.VertexCount()
			if n.Mesh.Material != nil {
				materials[n.Mesh.Material] = true
			}
		}
	})

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Scene:      %s\n", obj.Root.Name)
	fmt.Printf("Nodes:      %d\n", nodes)
	fmt.Printf("Meshes:     %d\n", obj.MeshCount())
	fmt.Printf("Vertices:   %d\n", vertices)
	fmt.Printf("Triangles:  %d\n", obj.TriangleCount())
	fmt.Printf("Materials:  %d\n", len(materials))
	fmt.Printf("Animations: %d\n", len(obj.Animations))

	if b := obj.Bounds(); b.Valid() {
		size := b.Size()
		center := b.Center()
		fmt.Println()
		fmt.Printf("Bounds min: (%.3f, %.3f, %.3f)\n", b.Min.X, b.Min.Y, b.Min.Z)
		fmt.Printf("Bounds max: (%.3f, %.3f, %.3f)\n", b.Max.X, b.Max.Y, b.Max.Z)
		fmt.Printf("Size:       (%.3f, %.3f, %.3f)\n", size.X, size.Y, size.Z)
		fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	}
}

func cmdTree(args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	depth := fs.Int("depth", 0, "Limit tree depth (0 = unlimited)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbinfo tree <model> [-depth N]")
		os.Exit(1)
	}

	obj := open(fs.Arg(0))
	printNode(obj.Root, 0, *depth)
}

// printNode prints a node and its children, indented by depth.
func printNode(n *scene.Node, depth, maxDepth int) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}

	indent := strings.Repeat("  ", depth)
	switch {
	case n.Kind == scene.KindMesh && n.Mesh != nil:
		fmt.Printf("%s%s [mesh: %d tris]\n", indent, n.Name, n.Mesh.TriangleCount())
	case n.Kind == scene.KindLines && n.Lines != nil:
		fmt.Printf("%s%s [lines: %d segments]\n", indent, n.Name, n.Lines.SegmentCount())
	case n.Kind == scene.KindCamera:
		fmt.Printf("%s%s [camera]\n", indent, n.Name)
	default:
		fmt.Printf("%s%s\n", indent, n.Name)
	}

	for _, c := range n.Children {
		printNode(c, depth+1, maxDepth)
	}
}

func cmdMeshes(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbinfo meshes <model>")
		os.Exit(1)
	}

	obj := open(args[0])

	fmt.Printf("%-32s %10s %10s  %s\n", "NAME", "VERTICES", "TRIANGLES", "MATERIAL")
	obj.Root.Traverse(func(n *scene.Node) {
		if n.Kind != scene.KindMesh || n.Mesh == nil {
			return
		}
		material := "(none)"
		if m := n.Mesh.Material; m != nil {
			material = m.Name
			if material == "" {
				material = "(unnamed)"
			}
			if m.Transparent {
				material += fmt.Sprintf(" [transparent %.2f]", m.Opacity)
			}
			if m.Texture != nil {
				material += " [textured]"
			}
		}
		fmt.Printf("%-32s %10d %10d  %s\n",
			n.Name, n.Mesh.VertexCount(), n.Mesh.TriangleCount(), material)
	})
}

func cmdAnimations(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbinfo animations <model>")
		os.Exit(1)
	}

	obj := open(args[0])

	if len(obj.Animations) == 0 {
		fmt.Println("No animations")
		return
	}

	for _, a := range obj.Animations {
		fmt.Printf("%-32s %6.2fs\n", a.Name, a.Duration)
	}
}
