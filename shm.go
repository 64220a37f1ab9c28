//go:build linux
// +build linux

package layershell

import (
	"fmt"

	"github.com/neurlang/wayland/wl"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// createAnonymousFile creates an anonymous file for shared memory
func createAnonymousFile(size int64) (fd int, err error) {
	// Try memfd_create first (Linux 3.17+)
	fd, err = unix.MemfdCreate("layershell-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		err = unix.Ftruncate(fd, size)
		if err != nil {
			_ = unix.Close(fd)
			return -1, err
		}

		// Add seals to prevent resizing
		_, err = unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS,
			unix.F_SEAL_SHRINK|unix.F_SEAL_GROW|unix.F_SEAL_SEAL)
		if err != nil {
			_ = unix.Close(fd)
			return -1, err
		}

		return fd, nil
	}

	// Fallback to O_TMPFILE if available
	fd, err = unix.Open("/dev/shm", unix.O_TMPFILE|unix.O_RDWR|unix.O_CLOEXEC, 0600)
	if err == nil {
		err = unix.Ftruncate(fd, size)
		if err != nil {
			_ = unix.Close(fd)
			return -1, err
		}
		return fd, nil
	}

	// Final fallback: create temp file and unlink
	name := fmt.Sprintf("/dev/shm/layershell-%d", unix.Getpid())
	fd, err = unix.Open(name, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0600)
	if err != nil {
		return -1, err
	}
	_ = unix.Unlink(name)

	err = unix.Ftruncate(fd, size)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	return fd, nil
}

func mapMemory(fd int, size int) ([]byte, error) {
	return unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func unmapMemory(data []byte) error {
	return unix.Munmap(data)
}

const slotCount = 2

// bufferSlot is one wl_buffer inside the pool. busy is set while the
// compositor holds the buffer and cleared by the release event.
type bufferSlot struct {
	buffer *wl.Buffer
	data   []byte
	busy   bool
}

func (s *bufferSlot) HandleBufferRelease(ev wl.BufferReleaseEvent) {
	s.busy = false
}

// surfaceBuffers double-buffers ARGB8888 shm memory for one surface. The
// pool is recreated when the committed size changes.
type surfaceBuffers struct {
	shm    *wl.Shm
	pool   *wl.ShmPool
	fd     int
	mem    []byte
	slots  [slotCount]bufferSlot
	width  int32
	height int32
	stride int32
}

func newSurfaceBuffers(shm *wl.Shm) *surfaceBuffers {
	return &surfaceBuffers{shm: shm, fd: -1}
}

// acquire returns a free slot sized width x height, reallocating the pool
// if the geometry changed.
func (b *surfaceBuffers) acquire(width, height int32) (*bufferSlot, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid buffer size %dx%d", width, height)
	}
	if width != b.width || height != b.height {
		if err := b.realloc(width, height); err != nil {
			return nil, err
		}
	}
	for i := range b.slots {
		if !b.slots[i].busy {
			return &b.slots[i], nil
		}
	}
	// Both buffers held by the compositor. Overwriting the older one is the
	// lesser evil compared to stalling the dispatch loop.
	log.Debug().Msg("all shm slots busy, reusing first")
	return &b.slots[0], nil
}

func (b *surfaceBuffers) realloc(width, height int32) error {
	b.destroy()

	stride := width * 4
	slotSize := int(stride) * int(height)
	total := slotSize * slotCount

	fd, err := createAnonymousFile(int64(total))
	if err != nil {
		return errors.Wrap(err, "create shm file")
	}
	mem, err := mapMemory(fd, total)
	if err != nil {
		_ = unix.Close(fd)
		return errors.Wrap(err, "map shm file")
	}
	pool, err := b.shm.CreatePool(uintptr(fd), int32(total))
	if err != nil {
		_ = unmapMemory(mem)
		_ = unix.Close(fd)
		return errors.Wrap(err, "create shm pool")
	}

	for i := 0; i < slotCount; i++ {
		offset := int32(i * slotSize)
		buf, err := pool.CreateBuffer(offset, width, height, stride, wl.ShmFormatArgb8888)
		if err != nil {
			for j := 0; j < i; j++ {
				_ = b.slots[j].buffer.Destroy()
				b.slots[j] = bufferSlot{}
			}
			_ = pool.Destroy()
			_ = unmapMemory(mem)
			_ = unix.Close(fd)
			return errors.Wrap(err, "create shm buffer")
		}
		b.slots[i] = bufferSlot{
			buffer: buf,
			data:   mem[offset : int(offset)+slotSize],
		}
		buf.AddReleaseHandler(&b.slots[i])
	}

	b.pool = pool
	b.fd = fd
	b.mem = mem
	b.width = width
	b.height = height
	b.stride = stride
	log.Debug().Int32("width", width).Int32("height", height).Msg("shm pool allocated")
	return nil
}

// destroy releases pool, buffers and mapping. Safe on a zero value.
func (b *surfaceBuffers) destroy() {
	for i := range b.slots {
		if b.slots[i].buffer != nil {
			_ = b.slots[i].buffer.Destroy()
		}
		b.slots[i] = bufferSlot{}
	}
	if b.pool != nil {
		_ = b.pool.Destroy()
		b.pool = nil
	}
	if b.mem != nil {
		_ = unmapMemory(b.mem)
		b.mem = nil
	}
	if b.fd >= 0 {
		_ = unix.Close(b.fd)
		b.fd = -1
	}
	b.width, b.height = 0, 0
}
