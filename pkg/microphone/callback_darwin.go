//go:build darwin && cgo

package microphone

// #include <stdint.h>
import "C"

import "runtime/cgo"

//export micbridgeRecordPermissionResult
func micbridgeRecordPermissionResult(handle C.uintptr_t, granted C.int) {
	h := cgo.Handle(handle)
	completion := h.Value().(func(bool))
	h.Delete()
	completion(granted != 0)
}
