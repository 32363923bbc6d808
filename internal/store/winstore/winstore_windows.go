//go:build windows

package winstore

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

const (
	maxKeyNameLen   = 256   // 255 characters plus NUL
	maxValueNameLen = 16384 // 16383 characters plus NUL
	initialDataLen  = 256
)

var (
	modadvapi32       = windows.NewLazySystemDLL("advapi32.dll")
	procRegEnumValueW = modadvapi32.NewProc("RegEnumValueW")
)

// Store opens keys of the local registry for reading.
type Store struct{}

var _ store.Backend = (*Store)(nil)

// New returns a live registry backend.
func New() (*Store, error) {
	if err := procRegEnumValueW.Find(); err != nil {
		return nil, fmt.Errorf("winstore: %w", err)
	}
	return &Store{}, nil
}

func predefined(root types.Root) (registry.Key, bool) {
	switch root {
	case types.ClassesRoot:
		return registry.CLASSES_ROOT, true
	case types.CurrentUser:
		return registry.CURRENT_USER, true
	case types.LocalMachine:
		return registry.LOCAL_MACHINE, true
	case types.Users:
		return registry.USERS, true
	case types.CurrentConfig:
		return registry.CURRENT_CONFIG, true
	}
	return 0, false
}

// Open implements store.Backend.
func (s *Store) Open(root types.Root, path string) (store.Handle, error) {
	base, ok := predefined(root)
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindInvalidRoot, Msg: root.String(), Err: types.ErrInvalidRoot}
	}
	k, err := registry.OpenKey(base, path, registry.READ)
	if err != nil {
		return nil, mapErr(err, store.JoinPath(root.String(), path))
	}
	return &handle{
		key:     k,
		path:    store.JoinPath(root.String(), path),
		keyName: make([]uint16, maxKeyNameLen),
		valName: make([]uint16, maxValueNameLen),
		data:    make([]byte, initialDataLen),
	}, nil
}

func mapErr(err error, path string) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		logger.Debug("registry call failed", "path", path, "errno", uintptr(errno), "err", err)
	}
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		return types.NotFoundf("%s", path)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return types.AccessDeniedf("%s", path)
	case errors.Is(err, windows.ERROR_NO_MORE_ITEMS):
		return types.ErrNoMoreItems
	}
	return fmt.Errorf("%s: %w", path, err)
}

type handle struct {
	key     registry.Key
	path    string
	keyName []uint16
	valName []uint16
	data    []byte
}

func (h *handle) SubkeyName(i int) (string, error) {
	n := uint32(len(h.keyName))
	err := windows.RegEnumKeyEx(windows.Handle(h.key), uint32(i), &h.keyName[0], &n, nil, nil, nil, nil)
	if err != nil {
		return "", mapErr(err, h.path)
	}
	return windows.UTF16ToString(h.keyName[:n]), nil
}

func (h *handle) Value(i int) (types.Value, error) {
	for {
		nameLen := uint32(len(h.valName))
		dataLen := uint32(len(h.data))
		var typ uint32
		r0, _, _ := procRegEnumValueW.Call(
			uintptr(h.key),
			uintptr(uint32(i)),
			uintptr(unsafe.Pointer(&h.valName[0])),
			uintptr(unsafe.Pointer(&nameLen)),
			0,
			uintptr(unsafe.Pointer(&typ)),
			uintptr(unsafe.Pointer(&h.data[0])),
			uintptr(unsafe.Pointer(&dataLen)),
		)
		if errno := syscall.Errno(r0); errno == windows.ERROR_MORE_DATA {
			h.data = make([]byte, max(int(dataLen), 2*len(h.data)))
			continue
		} else if errno != 0 {
			return types.Value{}, mapErr(errno, h.path)
		}
		data := make([]byte, dataLen)
		copy(data, h.data[:dataLen])
		return types.Value{
			Name: windows.UTF16ToString(h.valName[:nameLen]),
			Type: types.RegType(typ),
			Data: data,
		}, nil
	}
}

func (h *handle) Close() error {
	return h.key.Close()
}
