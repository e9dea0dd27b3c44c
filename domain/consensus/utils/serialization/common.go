package serialization

import (
	"encoding/binary"
	"io"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

// ErrMalformed indicates bytes that do not decode to the expected element
var ErrMalformed = errors.New("malformed serialization")

// maxVarIntLength is the longest varint encoding of a uint64
const maxVarIntLength = binary.MaxVarintLen64

// VarInt is a uint64 written as an unsigned LEB128 varint
type VarInt uint64

// WriteElement writes the canonical representation of element to w.
// Fixed-size integers are little endian, VarInts are LEB128 and byte slices
// are prefixed by their varint length.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		_, err := w.Write([]byte{e})
		return err

	case uint32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case uint64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case VarInt:
		return WriteVarInt(w, uint64(e))

	case bool:
		if e {
			_, err := w.Write([]byte{1})
			return err
		}
		_, err := w.Write([]byte{0})
		return err

	case *externalapi.DomainHash:
		_, err := w.Write(e.ByteSlice())
		return err

	case externalapi.ECPoint:
		_, err := w.Write(e[:])
		return err

	case externalapi.ECScalar:
		_, err := w.Write(e[:])
		return err

	case []byte:
		err := WriteVarInt(w, uint64(len(e)))
		if err != nil {
			return err
		}
		_, err = w.Write(e)
		return err
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadElement reads into the element pointed to by element, using the same
// encodings as WriteElement. Byte slices longer than maxByteSliceLength are
// rejected.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = buf[0]
		return nil

	case *uint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = binary.LittleEndian.Uint32(buf[:])
		return nil

	case *uint64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = binary.LittleEndian.Uint64(buf[:])
		return nil

	case *VarInt:
		value, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		*e = VarInt(value)
		return nil

	case *bool:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		switch buf[0] {
		case 0:
			*e = false
		case 1:
			*e = true
		default:
			return errors.Wrapf(ErrMalformed, "invalid bool byte %d", buf[0])
		}
		return nil

	case **externalapi.DomainHash:
		var buf [externalapi.DomainHashSize]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return errors.WithStack(err)
		}
		*e = externalapi.NewDomainHashFromByteArray(&buf)
		return nil

	case *externalapi.ECPoint:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return errors.WithStack(err)
		}
		return nil

	case *externalapi.ECScalar:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return errors.WithStack(err)
		}
		return nil

	case *[]byte:
		length, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if length > maxByteSliceLength {
			return errors.Wrapf(ErrMalformed, "byte slice of length %d exceeds %d", length, maxByteSliceLength)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return errors.WithStack(err)
		}
		*e = buf
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

const maxByteSliceLength = 32 * 1024 * 1024

// WriteVarInt writes value as an unsigned LEB128 varint
func WriteVarInt(w io.Writer, value uint64) error {
	var buf [maxVarIntLength]byte
	n := binary.PutUvarint(buf[:], value)
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarInt reads an unsigned LEB128 varint. Non-canonical encodings with
// trailing zero groups are rejected.
func ReadVarInt(r io.Reader) (uint64, error) {
	var value uint64
	var buf [1]byte
	for i := 0; i < maxVarIntLength; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.WithStack(err)
		}
		b := buf[0]
		if i == maxVarIntLength-1 && b > 1 {
			return 0, errors.Wrapf(ErrMalformed, "varint overflows 64 bits")
		}
		value |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, errors.Wrapf(ErrMalformed, "non-canonical varint")
			}
			return value, nil
		}
	}
	return 0, errors.Wrapf(ErrMalformed, "varint is too long")
}

// VarIntSize returns the length of the varint encoding of value
func VarIntSize(value uint64) int {
	size := 1
	for value >= 0x80 {
		value >>= 7
		size++
	}
	return size
}
