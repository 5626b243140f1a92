package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"path"
	"strings"

	_ "golang.org/x/image/bmp" // register decoder

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	tgaHeaderSize = 18
	ddsHeaderSize = 20
	ddsMagic      = "DDS "
)

var errUnknownImageHeader = errors.New("unrecognized image header")

// readDimensions reads the pixel size of a texture from its file header.
func (p *UnityProject) readDimensions(ctx context.Context, resource m.Path) (m.Dimensions, error) {
	file, err := p.fs.Open(ctx, p.fsPath(resource))
	if err != nil {
		return m.Dimensions{}, fmt.Errorf("open %s: %w", resource, err)
	}

	defer func() { _ = file.Close() }()

	reader := bufio.NewReader(file)

	switch strings.ToLower(path.Ext(string(resource))) {
	case ".tga":
		return readTGADimensions(reader)
	case ".dds":
		return readDDSDimensions(reader)
	default:
		config, _, err := image.DecodeConfig(reader)
		if err != nil {
			return m.Dimensions{}, fmt.Errorf("decode %s: %w", resource, err)
		}

		return m.Dimensions{Width: config.Width, Height: config.Height}, nil
	}
}

func readTGADimensions(r io.Reader) (m.Dimensions, error) {
	header := make([]byte, tgaHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return m.Dimensions{}, fmt.Errorf("read tga header: %w", err)
	}

	dims := m.Dimensions{
		Width:  int(binary.LittleEndian.Uint16(header[12:14])),
		Height: int(binary.LittleEndian.Uint16(header[14:16])),
	}

	if !dims.Valid() {
		return m.Dimensions{}, errUnknownImageHeader
	}

	return dims, nil
}

func readDDSDimensions(r io.Reader) (m.Dimensions, error) {
	header := make([]byte, ddsHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return m.Dimensions{}, fmt.Errorf("read dds header: %w", err)
	}

	if !bytes.Equal(header[:4], []byte(ddsMagic)) {
		return m.Dimensions{}, errUnknownImageHeader
	}

	dims := m.Dimensions{
		Height: int(binary.LittleEndian.Uint32(header[12:16])),
		Width:  int(binary.LittleEndian.Uint32(header[16:20])),
	}

	if !dims.Valid() {
		return m.Dimensions{}, errUnknownImageHeader
	}

	return dims, nil
}
