//go:build darwin && cgo

package microphone

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework AVFoundation -framework Foundation
#include <stdint.h>
#include <TargetConditionals.h>
#import <AVFoundation/AVFoundation.h>

extern void micbridgeRecordPermissionResult(uintptr_t handle, int granted);

static void micbridge_request_record_permission(uintptr_t handle) {
#if TARGET_OS_IPHONE
    [[AVAudioSession sharedInstance] requestRecordPermission:^(BOOL granted) {
        micbridgeRecordPermissionResult(handle, granted ? 1 : 0);
    }];
#else
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {
        micbridgeRecordPermissionResult(handle, granted ? 1 : 0);
    }];
#endif
}
*/
import "C"

import "runtime/cgo"

// nativeSession calls AVFoundation. On iOS this is AVAudioSession's record
// permission; on macOS it is the capture-device authorization for audio.
// Both show the system dialog only while the decision is undetermined.
type nativeSession struct{}

// NewNativeSession returns the AVFoundation-backed AudioSession.
func NewNativeSession() (AudioSession, error) {
	return nativeSession{}, nil
}

func (nativeSession) RequestRecordPermission(completion func(granted bool)) {
	h := cgo.NewHandle(completion)
	C.micbridge_request_record_permission(C.uintptr_t(h))
}
