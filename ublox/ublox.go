// Package ublox holds the narrow value objects the persistence layer needs
// to describe a U-Blox GPS configuration; the protocol driver itself (wire
// parsing, fix reporting) is an external collaborator out of scope here
// out of scope here.
package ublox

// ConfigValue is one CFG-VALSET key/value pair, the unit the UBX
// configuration codec (an external collaborator) emits and persist.MakeConfig
// embeds verbatim as framed messages.
type ConfigValue struct {
	Key   uint32
	Value []byte
}

// BaudRate is the serial baud rate a save-to-flash operation should
// negotiate with the receiver before issuing CFG-VALSET frames.
type BaudRate int

const (
	Baud9600   BaudRate = 9600
	Baud38400  BaudRate = 38400
	Baud115200 BaudRate = 115200
)
