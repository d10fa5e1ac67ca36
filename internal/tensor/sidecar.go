package tensor

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// WriteCompressed writes the tensor to w as a zstd stream. The raw tensor
// layout is preserved byte-for-byte; only the transport is compressed.
func WriteCompressed(w io.Writer, t []byte) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("tensor: creating zstd writer: %w", err)
	}
	if _, err := enc.Write(t); err != nil {
		enc.Close()
		return fmt.Errorf("tensor: compressing: %w", err)
	}
	return enc.Close()
}

// ReadCompressed decompresses a tensor written by WriteCompressed.
func ReadCompressed(r io.Reader) ([]byte, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("tensor: creating zstd reader: %w", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("tensor: decompressing: %w", err)
	}
	return data, nil
}
