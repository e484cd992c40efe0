package dto

import "time"

type Page struct {
	ItemID      int64     `json:"item_id"`
	Checksum    string    `json:"checksum"`
	Size        int       `json:"size"`
	RenderCount int       `json:"render_count"`
	RenderedAt  time.Time `json:"rendered_at"`
}

type PageCommand struct {
	ItemID     int64  `json:"item_id"`
	RoutingKey string `json:"routing_key"`
	Status     string `json:"status"`
}
