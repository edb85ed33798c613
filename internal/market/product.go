package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type ProductType string

const (
	TypeStars    ProductType = "stars"
	TypePremium  ProductType = "premium"
	TypeUsername ProductType = "username"
	TypeNumber   ProductType = "number"
)

func (t ProductType) Valid() bool {
	switch t {
	case TypeStars, TypePremium, TypeUsername, TypeNumber:
		return true
	}
	return false
}

// Metadata is the category-specific part of a Product. Exactly one
// variant exists per ProductType, so a product can never carry fields
// that are meaningless for its category.
type Metadata interface {
	Kind() ProductType
}

// StarsPack: a bundle of Telegram Stars.
type StarsPack struct {
	Stars int64
}

// PremiumPlan: a premium subscription for a number of months.
type PremiumPlan struct {
	DurationMonths int
}

// UsernameClaim: a reserved username, e.g. "@ton_god".
type UsernameClaim struct {
	Username string
}

// VirtualNumber: a virtual phone number, optionally region-bound.
type VirtualNumber struct {
	Region string
}

func (StarsPack) Kind() ProductType     { return TypeStars }
func (PremiumPlan) Kind() ProductType   { return TypePremium }
func (UsernameClaim) Kind() ProductType { return TypeUsername }
func (VirtualNumber) Kind() ProductType { return TypeNumber }

// Product is a purchasable catalog entry. Immutable after creation
// except Price, which is admin-editable.
type Product struct {
	ID        string
	Name      string
	Type      ProductType
	Price     ton.Amount
	Meta      Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrBadProductType = errors.New("unknown product type")
	ErrMetaMismatch   = errors.New("metadata does not match product type")
)

func (p Product) Validate() error {
	if p.Name == "" {
		return errors.New("product name required")
	}
	if !p.Type.Valid() {
		return ErrBadProductType
	}
	if p.Price < 0 {
		return errors.New("product price must not be negative")
	}
	if p.Meta != nil && p.Meta.Kind() != p.Type {
		return ErrMetaMismatch
	}
	return nil
}

// Wire format: the legacy gateway shape with "value" for stars packs
// and a type-keyed "extra_data" object for the other categories.

type premiumExtra struct {
	DurationMonths int `json:"duration_months"`
}

type usernameExtra struct {
	Username string `json:"username"`
}

type numberExtra struct {
	Region string `json:"region,omitempty"`
}

type productWire struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      ProductType     `json:"type"`
	Price     ton.Amount      `json:"price"`
	Value     *int64          `json:"value,omitempty"`
	Extra     json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	w := productWire{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	value, extra, err := MetaWire(p.Meta)
	if err != nil {
		return nil, err
	}
	w.Value = value
	w.Extra = extra
	return json.Marshal(w)
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var w productWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	// partial payloads (price-only updates) omit the type; leave the
	// metadata unset and let the store keep the current values
	var meta Metadata
	if w.Type != "" {
		var err error
		meta, err = MetaFromWire(w.Type, w.Value, w.Extra)
		if err != nil {
			return err
		}
	}
	*p = Product{
		ID:        w.ID,
		Name:      w.Name,
		Type:      w.Type,
		Price:     w.Price,
		Meta:      meta,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	return nil
}

// MetaWire flattens a Metadata variant into the value/extra_data pair
// used on the wire and in the extra_data jsonb column.
func MetaWire(m Metadata) (*int64, json.RawMessage, error) {
	switch v := m.(type) {
	case nil:
		return nil, nil, nil
	case StarsPack:
		n := v.Stars
		return &n, nil, nil
	case PremiumPlan:
		b, err := json.Marshal(premiumExtra{DurationMonths: v.DurationMonths})
		return nil, b, err
	case UsernameClaim:
		b, err := json.Marshal(usernameExtra{Username: v.Username})
		return nil, b, err
	case VirtualNumber:
		if v.Region == "" {
			return nil, nil, nil
		}
		b, err := json.Marshal(numberExtra{Region: v.Region})
		return nil, b, err
	default:
		return nil, nil, fmt.Errorf("%w: %T", ErrMetaMismatch, m)
	}
}

// MetaFromWire rebuilds the Metadata variant selected by the type tag.
func MetaFromWire(t ProductType, value *int64, extra json.RawMessage) (Metadata, error) {
	switch t {
	case TypeStars:
		var n int64
		if value != nil {
			n = *value
		}
		return StarsPack{Stars: n}, nil
	case TypePremium:
		var e premiumExtra
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &e); err != nil {
				return nil, fmt.Errorf("premium extra_data: %w", err)
			}
		}
		return PremiumPlan{DurationMonths: e.DurationMonths}, nil
	case TypeUsername:
		var e usernameExtra
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &e); err != nil {
				return nil, fmt.Errorf("username extra_data: %w", err)
			}
		}
		return UsernameClaim{Username: e.Username}, nil
	case TypeNumber:
		var e numberExtra
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &e); err != nil {
				return nil, fmt.Errorf("number extra_data: %w", err)
			}
		}
		return VirtualNumber{Region: e.Region}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadProductType, t)
	}
}
