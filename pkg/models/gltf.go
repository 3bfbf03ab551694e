package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/tumble/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// SmoothNormals fills in normals for files that have none.
	SmoothNormals bool
	// FitUnitCube rescales the result to span [-1, 1] on its longest axis.
	FitUnitCube bool
}

// NewGLTFLoader creates a loader that fills in missing normals and fits the
// model to the die's [-1, 1] space.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		SmoothNormals: true,
		FitUnitCube:   true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	mesh, _, err := NewGLTFLoader().Load(path)
	return mesh, err
}

// Load reads a GLTF or GLB file. The returned image is the first embedded
// or adjacent texture that decodes, or nil.
func (l *GLTFLoader) Load(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, nil, fmt.Errorf("load %s: %w", path, ErrNoGeometry)
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.SmoothNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}

	if l.FitUnitCube {
		mesh.FitUnitCube()
	} else {
		mesh.CalculateBounds()
	}

	return mesh, firstTexture(doc, filepath.Dir(path)), nil
}

// processMesh extracts triangle geometry from a GLTF mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, normIdx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, uvIdx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i := range positions {
			v := MeshVertex{Position: positions[i]}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// GLTF puts V=0 at the top of the image
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// GLTF front faces are counter-clockwise; ours are clockwise
		// because screen Y points down.
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{V: [3]int{base + indices[i], base + indices[i+2], base + indices[i+1]}}
			if !inRange(f, len(mesh.Vertices)) {
				return fmt.Errorf("face %d references missing vertex", i/3)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	return nil
}

func inRange(f Face, n int) bool {
	for _, idx := range f.V {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}

func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, idx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, len(floats)/3)
	for i := range out {
		out[i] = math3d.V3(floats[3*i], floats[3*i+1], floats[3*i+2])
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, idx int) ([]math3d.Vec2, error) {
	floats, err := readFloats(doc, idx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, len(floats)/2)
	for i := range out {
		out[i] = math3d.V2(floats[2*i], floats[2*i+1])
	}
	return out, nil
}

// readFloats reads a float accessor of the given shape as a flat slice.
func readFloats(doc *gltf.Document, idx int, typ gltf.AccessorType, width int) ([]float64, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, acc.Type)
	}
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", acc.ComponentType)
	}
	data, start, stride, err := accessorBytes(doc, acc, 4*width)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, acc.Count*width)
	for i := range acc.Count {
		off := start + i*stride
		if off+4*width > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", idx)
		}
		for j := range width {
			bits := binary.LittleEndian.Uint32(data[off+4*j:])
			out = append(out, float64(math.Float32frombits(bits)))
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", acc.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, acc, size)
	if err != nil {
		return nil, err
	}

	out := make([]int, acc.Count)
	for i := range out {
		off := start + i*stride
		if off+size > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", idx)
		}
		switch size {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out, nil
}

// accessorBytes returns the buffer behind an accessor with the offset of
// its first element and the element stride.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if acc.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}
	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buf.Data, bv.ByteOffset + acc.ByteOffset, stride, nil
}

// firstTexture decodes the first image in the document that can be read,
// either from a buffer view or from a file next to the model.
func firstTexture(doc *gltf.Document, dir string) image.Image {
	for _, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
				continue
			}
			data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		case img.URI != "":
			b, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				continue
			}
			data = b
		}
		if decoded, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return decoded
		}
	}
	return nil
}

// SaveGLB writes the mesh as a binary GLTF file. A non-nil texture is
// embedded as PNG and bound as the base color of the mesh's material.
func SaveGLB(path string, mesh *Mesh, texture image.Image) error {
	if mesh == nil || len(mesh.Faces) == 0 {
		return fmt.Errorf("save %s: %w", path, ErrNoGeometry)
	}
	doc, err := encodeDocument(mesh, texture)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func encodeDocument(mesh *Mesh, texture image.Image) (*gltf.Document, error) {
	var buf bytes.Buffer
	views := []*gltf.BufferView{}
	view := func(start int, target gltf.Target) int {
		views = append(views, &gltf.BufferView{
			Buffer:     0,
			ByteOffset: start,
			ByteLength: buf.Len() - start,
			Target:     target,
		})
		return len(views) - 1
	}
	putFloat := func(f float64) {
		buf.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f))))
	}

	mesh.CalculateBounds()
	n := len(mesh.Vertices)

	start := buf.Len()
	for _, v := range mesh.Vertices {
		putFloat(v.Position.X)
		putFloat(v.Position.Y)
		putFloat(v.Position.Z)
	}
	posView := view(start, gltf.TargetArrayBuffer)

	start = buf.Len()
	for _, v := range mesh.Vertices {
		putFloat(v.Normal.X)
		putFloat(v.Normal.Y)
		putFloat(v.Normal.Z)
	}
	normView := view(start, gltf.TargetArrayBuffer)

	start = buf.Len()
	for _, v := range mesh.Vertices {
		putFloat(v.UV.X)
		putFloat(1 - v.UV.Y)
	}
	uvView := view(start, gltf.TargetArrayBuffer)

	start = buf.Len()
	for _, f := range mesh.Faces {
		// back to counter-clockwise
		for _, idx := range [3]int{f.V[0], f.V[2], f.V[1]} {
			buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(idx)))
		}
	}
	idxView := view(start, gltf.TargetElementArrayBuffer)

	lo, hi := mesh.GetBounds()
	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0", Generator: "tumble"},
		Accessors: []*gltf.Accessor{
			{
				BufferView:    ptr(posView),
				ComponentType: gltf.ComponentFloat,
				Count:         n,
				Type:          gltf.AccessorVec3,
				Min:           []float64{lo.X, lo.Y, lo.Z},
				Max:           []float64{hi.X, hi.Y, hi.Z},
			},
			{BufferView: ptr(normView), ComponentType: gltf.ComponentFloat, Count: n, Type: gltf.AccessorVec3},
			{BufferView: ptr(uvView), ComponentType: gltf.ComponentFloat, Count: n, Type: gltf.AccessorVec2},
			{BufferView: ptr(idxView), ComponentType: gltf.ComponentUint, Count: 3 * len(mesh.Faces), Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: mesh.Name,
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{
					gltf.POSITION:   0,
					gltf.NORMAL:     1,
					gltf.TEXCOORD_0: 2,
				},
				Indices: ptr(3),
				Mode:    gltf.PrimitiveTriangles,
			}},
		}},
		Nodes:  []*gltf.Node{{Name: mesh.Name, Mesh: ptr(0)}},
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Scene:  ptr(0),
	}

	if texture != nil {
		start = buf.Len()
		if err := png.Encode(&buf, texture); err != nil {
			return nil, fmt.Errorf("encode texture: %w", err)
		}
		imgView := view(start, 0)
		doc.Images = []*gltf.Image{{MimeType: "image/png", BufferView: ptr(imgView)}}
		doc.Textures = []*gltf.Texture{{Source: ptr(0)}}
		doc.Materials = []*gltf.Material{{
			Name: "die",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
		}}
		doc.Meshes[0].Primitives[0].Material = ptr(0)
	}

	doc.BufferViews = views
	doc.Buffers = []*gltf.Buffer{{ByteLength: buf.Len(), Data: buf.Bytes()}}
	return doc, nil
}

func ptr(i int) *int { return &i }
