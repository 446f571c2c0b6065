package stack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/outpostlabs/outpost/pkg/logging"
	"github.com/outpostlabs/outpost/pkg/tui"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/events"
	"github.com/pulumi/pulumi/sdk/v3/go/common/apitype"
	"go.uber.org/zap"
)

// Events returns a channel feeding engine events into the context's progress
// display. Pulumi reports three steps per resource (pre, refresh, outputs),
// which gives the progress bar its denominator.
func Events(ctx context.Context, action string) chan<- events.EngineEvent {
	ech := make(chan events.EngineEvent)
	go func() {
		log := logging.GetLogger(ctx).Named("pulumi.events").Sugar()
		progress := tui.GetProgress(ctx)
		status := fmt.Sprintf("%s stack", action)

		// resourceStatus tracks each resource's progress. The key is the
		// resource's URN, the value one of:
		// 0. Pending / resource pre event, this just marks which resources we're aware of
		// 1. Refresh complete
		// 2. In progress
		// 3. Done
		resourceStatus := make(map[string]int)

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ech:
				if !ok {
					return
				}
				buf.Reset()
				if err := enc.Encode(e); err != nil {
					log.Error("Failed to encode pulumi event", zap.Error(err))
					continue
				}
				logLine := strings.TrimSpace(buf.String())
				log.Debugf("Pulumi event: %s", logLine)

				switch {
				case e.PreludeEvent != nil:
					progress.UpdateIndeterminate(status)

				case e.ResourcePreEvent != nil:
					e := e.ResourcePreEvent
					if e.Metadata.Op == apitype.OpRefresh {
						resourceStatus[e.Metadata.URN] = 0
					} else {
						resourceStatus[e.Metadata.URN] = 2
					}

				case e.ResOutputsEvent != nil:
					e := e.ResOutputsEvent
					if e.Metadata.Op == apitype.OpRefresh {
						resourceStatus[e.Metadata.URN] = 1
					} else {
						resourceStatus[e.Metadata.URN] = 3
					}
				}

				current, total := 0, 0
				for _, stateCode := range resourceStatus {
					total += 3
					current += stateCode
				}
				if total > 0 {
					progress.Update(status, current, total)
				}
			}
		}
	}()
	return ech
}
