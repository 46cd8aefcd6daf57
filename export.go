package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/preview"
)

// binaryMagic opens every .bin export.
var binaryMagic = [4]byte{'L', 'T', 'H', '1'}

// writeResult writes result to path in the configured format.
func writeResult(path string, cfg config.Config, result EvalResult) error {
	if cfg.Output.Format == config.FormatSTL {
		return sdfx.SaveSTL(path, result.Geometries()...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	w := bufio.NewWriter(f)

	switch cfg.Output.Format {
	case config.FormatJSON:
		err = writeJSON(w, result)
	case config.FormatBin:
		err = writeBinary(w, result.Geometries())
	case config.FormatWebP, config.FormatPNG:
		img := preview.Render(result.Geometries(), cfg.PreviewOptions())
		err = preview.Encode(w, img, preview.Format(cfg.Output.Format))
	default:
		err = fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("export %s: %w", path, err)
	}
	kernel.Logger().Info("wrote output", "path", path, "format", cfg.Output.Format, "meshes", len(result.Meshes))
	return nil
}

func writeJSON(w io.Writer, result EvalResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// writeBinary writes the upload payloads: the magic, a uint32 mesh count,
// then per mesh uint32 format, topology, vertex count and index count
// followed by the vertex and index bytes. Everything is little-endian.
func writeBinary(w io.Writer, geoms []*kernel.Geometry) error {
	if _, err := w.Write(binaryMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(geoms))); err != nil {
		return err
	}
	for _, g := range geoms {
		header := [4]uint32{
			uint32(g.Format),
			uint32(g.Topology),
			uint32(g.VertexCount()),
			uint32(g.IndexCount()),
		}
		if err := binary.Write(w, binary.LittleEndian, header); err != nil {
			return err
		}
		if _, err := w.Write(g.VertexBytes()); err != nil {
			return err
		}
		if _, err := w.Write(g.IndexBytes()); err != nil {
			return err
		}
	}
	return nil
}
