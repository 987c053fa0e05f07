package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rcls/gpsfreak/internal/logging"
	"github.com/rcls/gpsfreak/persist"
	"github.com/rcls/gpsfreak/regs"
	"github.com/rcls/gpsfreak/transport"
	"github.com/spf13/pflag"
)

// runSave reads the device's current LMK configuration (and, with -g, its
// GPS configuration) and commits a new generation to flash, preserving
// whichever half the caller didn't ask to refresh from the prior active
// slot.
func runSave(ctx context.Context, device string, timeout time.Duration, args []string) error {
	flags := pflag.NewFlagSet("save", pflag.ContinueOnError)
	saveGPS := flags.BoolP("gps", "g", false, "Also capture and save the GPS receiver's current configuration.")
	if err := flags.Parse(args); err != nil {
		return err
	}

	tp, err := openSerial(device, timeout)
	if err != nil {
		return err
	}
	defer tp.Close()

	headers, err := persist.GetHeaders(ctx, tp)
	if err != nil {
		return fmt.Errorf("reading flash headers: %w", err)
	}
	active, hadActive, err := persist.ActiveHeader(ctx, tp, headers)
	if err != nil {
		return fmt.Errorf("finding active slot: %w", err)
	}

	var prior []byte
	var nextGen uint32 = 1
	if hadActive {
		prior, err = persist.ReadBlob(ctx, tp, active)
		if err != nil {
			return fmt.Errorf("reading active blob: %w", err)
		}
		nextGen = active.Generation + 1
	}

	lmkWrites, err := readLiveLMKWrites(ctx, tp)
	if err != nil {
		return err
	}

	blob, err := persist.MakeConfig(persist.MakeConfigInput{
		Generation: nextGen,
		SaveLMK:    true,
		LMKWrites:  lmkWrites,
		SaveGPS:    *saveGPS,
		Prior:      prior,
	})
	if err != nil {
		return fmt.Errorf("assembling config: %w", err)
	}

	if hadActive {
		same, err := persist.CompareConfig(prior, blob)
		if err != nil {
			return err
		}
		if same {
			logging.L.Info("save: configuration unchanged, nothing to do")
			return nil
		}
	}

	var currentPtr *persist.SlotHeader
	if hadActive {
		currentPtr = &active
	}
	if err := persist.WriteConfig(ctx, tp, currentPtr, blob); err != nil {
		return fmt.Errorf("writing new slot: %w", err)
	}
	logging.L.Info("save: committed new generation", "generation", nextGen)
	return nil
}

// readLiveLMKWrites snapshots the device's whole LMK register image and
// re-packages it as a sequence of write frames, so the saved blob reflects
// exactly what's running rather than what freakctl last planned (the
// device may have been configured by another tool entirely).
//
// The replay is bracketed with a RESET_SW=1 write first and, iff the live
// RESET_SW value wasn't already 1, a write restoring that original value
// last, mirroring add_live_lmk05318b's live-register capture.
func readLiveLMKWrites(ctx context.Context, tp *serialTransport) ([]transport.Frame, error) {
	var image regs.MaskedBytes
	addr := 0
	for addr < regs.ImageSize {
		if regs.NeverWritten(addr) {
			addr++
			continue
		}
		length := maxBurstBytes
		if addr+length > regs.ImageSize {
			length = regs.ImageSize - addr
		}
		data, err := tp.LMKRead(ctx, uint16(addr), uint8(length))
		if err != nil {
			return nil, fmt.Errorf("reading live registers at %d: %w", addr, err)
		}
		copy(image.Data[addr:addr+len(data)], data)
		for i := 0; i < len(data); i++ {
			if !regs.NeverWritten(addr + i) {
				image.Mask[addr+i] = 0xff
			}
		}
		addr += length
	}

	resetReg := regs.Registers["RESET_SW"]
	orig := byte(image.Extract(resetReg))
	image.Mask[resetReg.Base] = 0 // framed explicitly below instead of bundled with the rest

	frames := []transport.Frame{persist.ResetSoftwareFrame(1)}
	for _, chunk := range image.Bundle(maxBurstBytes, [regs.ImageSize]byte{}) {
		frames = append(frames, persist.BuildLMKWriteFrame(uint16(chunk.Addr), chunk.Data))
	}
	if orig != 1 {
		frames = append(frames, persist.ResetSoftwareFrame(orig))
	}
	return frames, nil
}
