package compress

// ZstdCompressor provides Zstandard compression for captured diagnostic
// frame windows.
//
// This compressor favors compression ratio over speed, making it the
// right choice when a recorder is configured to retain a long history of
// corrupt-frame captures for later analysis rather than a quick look.
//
// Performance characteristics:
//   - Compression: ~5-20 ns/byte (depending on compression level)
//   - Decompression: ~2-5 ns/byte
//   - Memory usage: Moderate (pooled encoder/decoder)
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
