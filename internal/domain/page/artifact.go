package page

import "time"

// Artifact is the registry record of a rendered page. The content itself lives in a Store.
type Artifact struct {
	ItemID      int64
	Checksum    string
	Size        int
	RenderCount int
	RenderedAt  time.Time
}

type Page struct {
	Artifact
	Content []byte
}
