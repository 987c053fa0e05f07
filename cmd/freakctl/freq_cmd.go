package main

import (
	"context"
	"time"

	"github.com/rcls/gpsfreak/internal/config"
	"github.com/rcls/gpsfreak/internal/logging"
	"github.com/rcls/gpsfreak/plan"
	"github.com/rcls/gpsfreak/regs"
	"github.com/rcls/gpsfreak/transport"
)

// maxBurstBytes is the largest single LMK write burst the transport's wire
// framing will carry in one frame.
const maxBurstBytes = 32

func runFreq(ctx context.Context, device string, timeout time.Duration, profile config.Profile, args []string) error {
	t, err := parseTargetFreqs(profile, args)
	if err != nil {
		return err
	}
	p, err := plan.Plan(t)
	if err != nil {
		return err
	}
	p.Validate()
	printPlan(p)

	tp, err := openSerial(device, timeout)
	if err != nil {
		return err
	}
	defer tp.Close()

	image := regs.FreqMakeData(p)
	if err := applyDrivePresets(image, profile); err != nil {
		return err
	}
	if err := completeFromDevice(ctx, tp, image); err != nil {
		return err
	}

	resetAddr := regs.Registers["RESET_SW"].Base
	if err := tp.LMKWrite(ctx, resetAddr, []byte{1}); err != nil {
		return err
	}
	for _, chunk := range image.Bundle(maxBurstBytes, [regs.ImageSize]byte{}) {
		logging.L.Debug("lmk write", "addr", chunk.Addr, "len", len(chunk.Data))
		if err := tp.LMKWrite(ctx, uint16(chunk.Addr), chunk.Data); err != nil {
			return err
		}
	}
	return tp.LMKWrite(ctx, resetAddr, []byte{0})
}

func applyDrivePresets(image *regs.MaskedBytes, profile config.Profile) error {
	drives, err := profile.ResolveDrives()
	if err != nil {
		return err
	}
	for ch, d := range drives {
		regs.ApplyDrive(image, ch, d)
	}
	return nil
}

// completeFromDevice back-fills any partially-masked byte from the live
// device so the flush never clobbers bits the plan didn't touch.
func completeFromDevice(ctx context.Context, tp transport.Transport, image *regs.MaskedBytes) error {
	return image.CompletePartials(func(addr, length int) ([]byte, error) {
		return tp.LMKRead(ctx, uint16(addr), uint8(length))
	})
}

