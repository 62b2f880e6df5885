// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

type Bar interface {
	Add(int) error
	Close() error
}

type ProgressBar struct {
	*progressbar.ProgressBar
}

// NewRecordsBar returns a bar counting processed records. A negative total
// renders a spinner, for inputs of unknown size.
func NewRecordsBar(total int, description string, w io.Writer) *ProgressBar {
	return &ProgressBar{
		ProgressBar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("records"),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetPredictTime(total > 0),
			progressbar.OptionSetWidth(20),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetDescription(description),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(w, "\n")
			}),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}

type noopBar struct{}

func (noopBar) Add(int) error { return nil }
func (noopBar) Close() error  { return nil }

// NewNoopBar returns a bar that renders nothing.
func NewNoopBar() Bar {
	return noopBar{}
}
