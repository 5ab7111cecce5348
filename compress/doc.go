// Package compress provides compression and decompression codecs for the
// diagnostic recorder's captured corrupt-frame byte windows.
//
// Captures are small (bounded by the recorder's window size) and
// infrequent, so the algorithm choice is about trading CPU for the
// amount of raw log data a caller can retain for post-mortem inspection:
//   - None: no compression (fastest, largest)
//   - Zstd: best compression ratio, moderate speed
//   - S2: balanced compression and speed
//   - LZ4: fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use.
//
// # Memory Management
//
//   - NoOp: zero overhead, returns input unchanged
//   - LZ4/S2: pooled compressor state where the underlying library supports it
//   - Zstd: pooled encoder/decoder (klauspost/compress/zstd is explicitly
//     designed to amortize warmup cost across reuse)
package compress
