package locator

import "fmt"

type EndpointKind string

const (
	KindVideo EndpointKind = "video"
	KindAudio EndpointKind = "audio"
	KindMuxed EndpointKind = "muxed"
)

// StreamEndpoint is one readable media URL. URLs are presumed to expire after
// an undocumented window, so holders must be prepared to re-resolve.
type StreamEndpoint struct {
	Kind  EndpointKind `json:"kind"`
	URL   string       `json:"url"`
	Codec string       `json:"codec,omitempty"`
}

// MediaDescriptor is the resolved stream set for one source. It is read-only
// after resolution; expiry is handled by discarding the whole descriptor.
type MediaDescriptor struct {
	SourceID  string           `json:"source_id"`
	Title     string           `json:"title,omitempty"`
	Duration  float64          `json:"duration_sec,omitempty"`
	Endpoints []StreamEndpoint `json:"endpoints"`
}

// Inputs returns the transcoder input endpoints in order and whether they are
// a separate video+audio pair (which needs explicit stream mapping).
func (d MediaDescriptor) Inputs() (endpoints []StreamEndpoint, separate bool, err error) {
	var video, audio, muxed *StreamEndpoint
	for i := range d.Endpoints {
		e := &d.Endpoints[i]
		if e.URL == "" {
			continue
		}
		switch e.Kind {
		case KindVideo:
			if video == nil {
				video = e
			}
		case KindAudio:
			if audio == nil {
				audio = e
			}
		case KindMuxed:
			if muxed == nil {
				muxed = e
			}
		}
	}

	if video != nil && audio != nil {
		return []StreamEndpoint{*video, *audio}, true, nil
	}
	if muxed != nil {
		return []StreamEndpoint{*muxed}, false, nil
	}
	if video != nil {
		// Video-only source; nothing to map.
		return []StreamEndpoint{*video}, false, nil
	}
	return nil, false, &ResolutionError{Source: d.SourceID, Reason: "descriptor has no usable stream endpoint"}
}

func (d MediaDescriptor) Usable() bool {
	for _, e := range d.Endpoints {
		if e.URL != "" {
			return true
		}
	}
	return false
}

// ResolutionError reports that no usable stream endpoint could be produced
// from cache or network.
type ResolutionError struct {
	Source string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve streams for %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve streams for %s: %s", e.Source, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
