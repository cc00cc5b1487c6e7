package comparison

import (
	"github.com/jinzhu/copier"

	"github.com/songquanpeng/model-compare/relay/model"
	"github.com/songquanpeng/model-compare/relay/streaming"
)

// Target identifies what a slot of a batch runs against.
type Target struct {
	SlotId       string `json:"slotId"`
	Label        string `json:"label"`
	ProviderId   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	ModelId      string `json:"modelId"`
}

func newTarget(slot model.ActiveSlot) Target {
	return Target{
		SlotId:       slot.Slot.Id,
		Label:        slot.Slot.Label(),
		ProviderId:   slot.Provider.Id,
		ProviderName: slot.Provider.Name,
		ModelId:      slot.Slot.ModelId,
	}
}

// Snapshot is one published state of the response collection. Responses and
// Targets share the same order. A published Snapshot is never modified;
// every update replaces it with a new value.
type Snapshot struct {
	BatchId   string                    `json:"batchId,omitempty"`
	Version   uint64                    `json:"version"`
	Running   bool                      `json:"running"`
	Targets   []Target                  `json:"targets"`
	Responses []streaming.ModelResponse `json:"responses"`
}

// Response looks up the entry of slotID.
func (s Snapshot) Response(slotID string) (streaming.ModelResponse, bool) {
	for _, resp := range s.Responses {
		if resp.SlotId == slotID {
			return resp, true
		}
	}
	return streaming.ModelResponse{}, false
}

// Clone returns a deep copy the caller may modify.
func (s Snapshot) Clone() (Snapshot, error) {
	var out Snapshot
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

// withResponse returns a copy of s where the entry of resp.SlotId is
// replaced. ok is false when the entry is unknown or already terminal.
func (s Snapshot) withResponse(resp streaming.ModelResponse) (Snapshot, bool) {
	idx := -1
	for i := range s.Responses {
		if s.Responses[i].SlotId == resp.SlotId {
			idx = i
			break
		}
	}
	if idx < 0 || s.Responses[idx].Status.IsTerminal() {
		return s, false
	}

	next := s
	next.Version++
	next.Responses = make([]streaming.ModelResponse, len(s.Responses))
	copy(next.Responses, s.Responses)
	next.Responses[idx] = resp
	return next, true
}

// withAborted returns a copy of s where every streaming entry is aborted.
func (s Snapshot) withAborted() Snapshot {
	next := s
	next.Version++
	next.Responses = make([]streaming.ModelResponse, len(s.Responses))
	for i, resp := range s.Responses {
		if resp.Status == streaming.StatusStreaming {
			resp.Status = streaming.StatusAborted
			resp.Error = streaming.AbortedMessage
		}
		next.Responses[i] = resp
	}
	return next
}
