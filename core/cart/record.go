package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

// record mirrors the persisted layout:
//
//	{"state":{"items":[{"productId":"1","quantity":2,"unitPriceAtOrder":"1299"}]},"version":0}
type record struct {
	State   recordState `json:"state"`
	Version int         `json:"version"`
}

type recordState struct {
	Items []recordItem `json:"items"`
}

type recordItem struct {
	ProductID        string `json:"productId"`
	Quantity         int    `json:"quantity"`
	UnitPriceAtOrder string `json:"unitPriceAtOrder"`
}

func encodeRecord(lines []Line) ([]byte, error) {
	rec := record{
		State:   recordState{Items: make([]recordItem, 0, len(lines))},
		Version: RecordVersion,
	}
	for _, l := range lines {
		rec.State.Items = append(rec.State.Items, recordItem{
			ProductID:        l.ProductID.String(),
			Quantity:         l.Quantity,
			UnitPriceAtOrder: l.UnitPriceAtOrder.String(),
		})
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshaling cart record: %w", err)
	}
	return b, nil
}

func decodeRecord(b []byte) ([]Line, error) {
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling cart record: %w", err)
	}

	lines := make([]Line, 0, len(rec.State.Items))
	seen := make(map[string]bool, len(rec.State.Items))
	for i, it := range rec.State.Items {
		id, err := nat.Parse(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item[%d] product id: %w", i, err)
		}
		price, err := nat.Parse(it.UnitPriceAtOrder)
		if err != nil {
			return nil, fmt.Errorf("item[%d] unit price: %w", i, err)
		}
		if it.Quantity < 1 || it.Quantity > MaxQuantity {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if seen[id.String()] {
			return nil, fmt.Errorf("item[%d]: %w", i, errDuplicateLine)
		}
		seen[id.String()] = true

		lines = append(lines, Line{ProductID: id, Quantity: it.Quantity, UnitPriceAtOrder: price})
	}
	return lines, nil
}

var errDuplicateLine = errors.New("duplicate product line")
