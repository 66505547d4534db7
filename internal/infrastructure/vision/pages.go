package vision

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/tiff"
)

// tiffIFDOffsets проходит цепочку IFD классического TIFF и возвращает смещение
// каждой страницы. Для данных не в формате TIFF возвращает nil без ошибки.
func tiffIFDOffsets(data []byte) ([]uint32, binary.ByteOrder, error) {
	if len(data) < 8 {
		return nil, nil, nil
	}

	var order binary.ByteOrder
	switch string(data[:4]) {
	case "II*\x00":
		order = binary.LittleEndian
	case "MM\x00*":
		order = binary.BigEndian
	case "II+\x00", "MM\x00+":
		return nil, nil, errors.New("decode tiff: BigTIFF is not supported")
	default:
		return nil, nil, nil
	}

	var (
		offsets []uint32
		seen    = make(map[uint32]bool)
		size    = int64(len(data))
	)
	for off := order.Uint32(data[4:8]); off != 0; {
		if seen[off] {
			return nil, nil, fmt.Errorf("decode tiff: IFD chain loops at offset %d", off)
		}
		seen[off] = true

		if int64(off)+2 > size {
			return nil, nil, fmt.Errorf("decode tiff: IFD offset %d beyond %d bytes", off, size)
		}
		entries := int64(order.Uint16(data[off:]))
		next := int64(off) + 2 + entries*12
		if next+4 > size {
			return nil, nil, fmt.Errorf("decode tiff: IFD at offset %d is truncated", off)
		}

		offsets = append(offsets, off)
		off = order.Uint32(data[next:])
	}
	if len(offsets) == 0 {
		return nil, nil, errors.New("decode tiff: no pages")
	}
	return offsets, order, nil
}

// decodePages декодирует все страницы снимка. x/image/tiff читает только
// первый IFD, поэтому для каждой страницы заголовок перенаправляется на её IFD.
func decodePages(data []byte) ([]image.Image, error) {
	offsets, order, err := tiffIFDOffsets(data)
	if err != nil {
		return nil, err
	}
	if offsets == nil {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return []image.Image{img}, nil
	}

	patched := make([]byte, len(data))
	copy(patched, data)

	pages := make([]image.Image, 0, len(offsets))
	for i, off := range offsets {
		order.PutUint32(patched[4:8], off)
		img, err := tiff.Decode(bytes.NewReader(patched))
		if err != nil {
			return nil, fmt.Errorf("decode tiff page %d: %w", i, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
