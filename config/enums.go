package config

import "encoding/binary"

//go:generate go tool go-enum --marshal --names --mustparse -f $GOFILE

// Byte order of multi-byte values in binary files.
// ENUM(little, big)
type ByteOrder int

func (b ByteOrder) Order() binary.ByteOrder {
	switch b {
	case ByteOrderBig:
		return binary.BigEndian
	default:
		return binary.LittleEndian
	}
}
