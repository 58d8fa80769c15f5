package scene

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nutshell/engine/internal/buffer"
	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
)

var (
	ErrSnapshotFormat    = errors.New("scene: not a snapshot")
	ErrSnapshotTruncated = errors.New("scene: snapshot truncated")
	ErrDigestMismatch    = errors.New("scene: snapshot taken from a different scene")
)

const (
	snapshotMagic   = "NSNP"
	snapshotVersion = 1

	headerSize = len(snapshotMagic) + 1 + 32 + 4
	// id, name length, mask, transform, rigidbody flag; the name bytes follow.
	recordMinSize = 4 + 4 + 4 + 9*4 + 1
	bodySize      = 6 * 4
)

// Capture encodes the simulation state of every live entity: its transform and,
// when it has one, its rigidbody velocities. Records are written in ascending
// entity order. Layout (little endian):
//
//	magic[4] version u8 digest[32] count u32
//	{ id u32, name string, mask u32, position/rotation/scale 9xf32, body u8 [linear/angular 6xf32] }
func Capture(w *ecs.World, digest [32]byte) []byte {
	buf := buffer.New()
	buf.Write([]byte(snapshotMagic))
	buf.WriteU8(snapshotVersion)
	buf.Write(digest[:])
	buf.WriteU32(uint32(w.EntityCount()))

	hasBodies := ecs.IsRegistered[component.Rigidbody](w.Components())
	w.Entities().Live().Each(func(e ecs.Entity) bool {
		buf.WriteU32(uint32(e))
		name := ""
		if w.EntityHasName(e) {
			name = w.EntityName(e)
		}
		buf.WriteString(name)
		buf.WriteU32(uint32(w.MaskOf(e)))

		t := component.NewTransform()
		if ecs.HasComponent[component.Transform](w, e) {
			t = *ecs.GetComponent[component.Transform](w, e)
		}
		writeVec3(buf, t.Position)
		writeVec3(buf, t.Rotation)
		writeVec3(buf, t.Scale)

		if hasBodies && ecs.HasComponent[component.Rigidbody](w, e) {
			rb := ecs.GetComponent[component.Rigidbody](w, e)
			buf.WriteU8(1)
			writeVec3(buf, rb.LinearVelocity)
			writeVec3(buf, rb.AngularVelocity)
		} else {
			buf.WriteU8(0)
		}
		return true
	})
	return buf.Bytes()
}

// Restore applies a snapshot captured from the scene with the given digest.
// Records whose entity is no longer alive, is now bound to a different name, or
// no longer carries the components it had at capture time are skipped. It returns how many entities were updated. The world is not
// modified unless the whole snapshot decodes.
func Restore(w *ecs.World, digest [32]byte, data []byte) (int, error) {
	recs, err := decode(data, digest)
	if err != nil {
		return 0, err
	}
	hasBodies := ecs.IsRegistered[component.Rigidbody](w.Components())
	applied := 0
	for _, r := range recs {
		if int(r.entity) >= w.Capacity() || !w.Alive(r.entity) {
			continue
		}
		if r.name != "" {
			if e, ok := w.LookupEntity(r.name); !ok || e != r.entity {
				continue
			}
		}
		if w.MaskOf(r.entity) != r.mask {
			continue
		}
		if ecs.HasComponent[component.Transform](w, r.entity) {
			*ecs.GetComponent[component.Transform](w, r.entity) = r.transform
		}
		if r.body && hasBodies && ecs.HasComponent[component.Rigidbody](w, r.entity) {
			rb := ecs.GetComponent[component.Rigidbody](w, r.entity)
			rb.LinearVelocity = r.linear
			rb.AngularVelocity = r.angular
		}
		applied++
	}
	return applied, nil
}

type record struct {
	entity    ecs.Entity
	name      string
	mask      ecs.ComponentMask
	transform component.Transform
	body      bool
	linear    [3]float32
	angular   [3]float32
}

func decode(data []byte, digest [32]byte) ([]record, error) {
	buf := buffer.FromBytes(data)
	if buf.Size() < headerSize {
		return nil, ErrSnapshotFormat
	}
	magic := make([]byte, len(snapshotMagic))
	buf.Read(magic)
	if string(magic) != snapshotMagic {
		return nil, ErrSnapshotFormat
	}
	if v := buf.ReadU8(); v != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSnapshotFormat, v)
	}
	got := make([]byte, len(digest))
	buf.Read(got)
	if !bytes.Equal(got, digest[:]) {
		return nil, ErrDigestMismatch
	}

	count := int(buf.ReadU32())
	recs := make([]record, 0, min(count, buf.Remaining()/recordMinSize))
	for i := 0; i < count; i++ {
		if buf.Remaining() < recordMinSize {
			return nil, fmt.Errorf("%w: record %d of %d", ErrSnapshotTruncated, i, count)
		}
		var r record
		r.entity = ecs.Entity(buf.ReadU32())
		nameLen := int(buf.ReadU32())
		if buf.Remaining() < nameLen+recordMinSize-8 {
			return nil, fmt.Errorf("%w: record %d of %d", ErrSnapshotTruncated, i, count)
		}
		name := make([]byte, nameLen)
		buf.Read(name)
		r.name = string(name)
		r.mask = ecs.ComponentMask(buf.ReadU32())
		r.transform.Position = readVec3(buf)
		r.transform.Rotation = readVec3(buf)
		r.transform.Scale = readVec3(buf)
		r.body = buf.ReadU8() == 1
		if r.body {
			if buf.Remaining() < bodySize {
				return nil, fmt.Errorf("%w: record %d of %d", ErrSnapshotTruncated, i, count)
			}
			r.linear = readVec3(buf)
			r.angular = readVec3(buf)
		}
		recs = append(recs, r)
	}
	return recs, nil
}

func writeVec3(buf *buffer.Buffer, v [3]float32) {
	buf.WriteF32(v[0])
	buf.WriteF32(v[1])
	buf.WriteF32(v[2])
}

func readVec3(buf *buffer.Buffer) [3]float32 {
	return [3]float32{buf.ReadF32(), buf.ReadF32(), buf.ReadF32()}
}
