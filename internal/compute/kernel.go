package compute

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/cloth_step.wgsl
var clothStepWGSL string

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// KernelWGSL returns the substep kernel as WGSL source.
func KernelWGSL() string {
	return clothStepWGSL
}

// CompileKernelSPIRV compiles the WGSL kernel to SPIR-V words.
func CompileKernelSPIRV() ([]uint32, error) {
	spirvBytes, err := naga.Compile(clothStepWGSL)
	if err != nil {
		return nil, fmt.Errorf("compile cloth kernel: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile cloth kernel: %d bytes is not a whole number of words", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// SPIRVBytes serialises words back to little-endian bytes for writing to disk.
func SPIRVBytes(words []uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
