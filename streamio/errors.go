// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package streamio

import "errors"

var (
	// errFinOffsetMismatch is returned when a stream receives two fin
	// chunks that disagree about where the stream ends.
	errFinOffsetMismatch = errors.New("streamio: conflicting fin offset")

	// errPastFin is returned when a chunk extends past an already
	// declared fin offset.
	errPastFin = errors.New("streamio: data received past fin offset")

	// ErrFinAlreadyWritten is returned by Out.Write when fin was already
	// written on a previous call.
	ErrFinAlreadyWritten = errors.New("streamio: fin already written")
)
