package sdruntime

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Device identifies the execution device for the diffusion runtime.
type Device string

const (
	// DeviceCUDA runs inference on an NVIDIA GPU.
	DeviceCUDA Device = "cuda"
	// DeviceCPU runs inference on the general-purpose processor.
	DeviceCPU Device = "cpu"
)

// Precision is the numeric precision the model weights are loaded with.
type Precision string

const (
	// PrecisionFP16 is half precision, used on accelerators.
	PrecisionFP16 Precision = "fp16"
	// PrecisionFP32 is full precision, used on the CPU path.
	PrecisionFP32 Precision = "fp32"
)

// PrecisionFor returns the numeric precision to load model weights with
// for the given device: reduced precision on an accelerator, full
// precision otherwise. This is a pure function with no side effects.
func PrecisionFor(d Device) Precision {
	if d == DeviceCUDA {
		return PrecisionFP16
	}
	return PrecisionFP32
}

// ParseDevice parses a device string, returning DeviceCPU for anything
// that is not recognizably a CUDA request. Empty input returns ok=false
// so callers can fall back to detection.
func ParseDevice(s string) (Device, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DeviceCPU, false
	case "cuda", "gpu":
		return DeviceCUDA, true
	default:
		return DeviceCPU, true
	}
}

// deviceProbeTimeout bounds how long a detection probe may take.
const deviceProbeTimeout = 5 * time.Second

// DetectDevice probes for an available accelerator and returns the device
// the pipeline should attach to. Probe failures of any kind fall back to
// the CPU path.
func DetectDevice() Device {
	if hasCUDA() {
		return DeviceCUDA
	}
	return DeviceCPU
}

// hasCUDA reports whether an NVIDIA GPU is visible on this host.
// It queries nvidia-smi rather than linking NVML so the probe works the
// same in stub builds and real builds.
func hasCUDA() bool {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), deviceProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--list-gpus").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}
