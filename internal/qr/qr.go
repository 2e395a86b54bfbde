// qr.go
//
// Property QR guide service: properties, items and scannable instruction pages
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of qrguide.
// qrguide is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// qrguide is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with qrguide.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package qr renders QR codes pointing at public content pages.
package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/qrguide/internal/types"
	qrcode "github.com/skip2/go-qrcode"
)

// Size and margin limits
const (
	MinSize   = 64
	MaxSize   = 2048
	MaxMargin = 10
)

// Options controls rendering. Zero values fall back to the generator defaults.
// Size and margin accept numbers or numeric strings.
type Options struct {
	Size            types.FlexInt  `json:"size,omitempty" swaggertype:"integer"`
	ErrorCorrection string         `json:"errorCorrectionLevel,omitempty"`
	Margin          *types.FlexInt `json:"margin,omitempty" swaggertype:"integer"`
	DarkColor       string         `json:"darkColor,omitempty"`
	LightColor      string         `json:"lightColor,omitempty"`
}

// Code is a rendered QR code
type Code struct {
	ItemID     string  `json:"item_id,omitempty"`
	QRID       string  `json:"qr_id"`
	ContentURL string  `json:"content_url"`
	DataURL    string  `json:"qr_image"`
	PNG        []byte  `json:"-"`
	Options    Options `json:"options"`
}

// Generator builds content URLs under FrontendBase and renders them
type Generator struct {
	FrontendBase string
	Defaults     Options
}

// NewGenerator returns a generator with the given defaults. Defaults must be complete.
func NewGenerator(frontendBase string, defaults Options) *Generator {
	return &Generator{
		FrontendBase: strings.TrimRight(frontendBase, "/"),
		Defaults:     defaults,
	}
}

// ContentURL is the public page a qr_id resolves to
func (g *Generator) ContentURL(qrID string) string {
	return g.FrontendBase + "/content/" + qrID
}

// CreateQRCode allocates a new qr_id for itemID and renders it
func (g *Generator) CreateQRCode(itemID string, opts Options) (*Code, error) {
	code, err := g.Render(uuid.NewString(), opts)
	if err != nil {
		return nil, err
	}
	code.ItemID = itemID
	return code, nil
}

// Render draws the content URL of an existing qr_id
func (g *Generator) Render(qrID string, opts Options) (*Code, error) {
	resolved := g.resolve(opts)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	contentURL := g.ContentURL(qrID)
	buf, err := encodePNG(contentURL, resolved)
	if err != nil {
		return nil, types.NewInternalError(fmt.Errorf("qr encode: %w", err))
	}

	return &Code{
		QRID:       qrID,
		ContentURL: contentURL,
		DataURL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf),
		PNG:        buf,
		Options:    resolved,
	}, nil
}

func (g *Generator) resolve(opts Options) Options {
	out := g.Defaults
	if opts.Size != 0 {
		out.Size = opts.Size
	}
	if opts.ErrorCorrection != "" {
		out.ErrorCorrection = strings.ToUpper(opts.ErrorCorrection)
	}
	if opts.Margin != nil {
		m := *opts.Margin
		out.Margin = &m
	}
	if opts.DarkColor != "" {
		out.DarkColor = opts.DarkColor
	}
	if opts.LightColor != "" {
		out.LightColor = opts.LightColor
	}
	return out
}

// Validate checks a fully resolved option set
func (o Options) Validate() error {
	if o.Size < MinSize || o.Size > MaxSize {
		return types.NewValidationError("size must be between %d and %d", MinSize, MaxSize)
	}
	if _, err := recoveryLevel(o.ErrorCorrection); err != nil {
		return err
	}
	if o.Margin == nil || *o.Margin < 0 || *o.Margin > MaxMargin {
		return types.NewValidationError("margin must be between 0 and %d", MaxMargin)
	}
	if _, err := ParseHexColor(o.DarkColor); err != nil {
		return types.NewValidationError("darkColor: %v", err)
	}
	if _, err := ParseHexColor(o.LightColor); err != nil {
		return types.NewValidationError("lightColor: %v", err)
	}
	return nil
}

func recoveryLevel(level string) (qrcode.RecoveryLevel, error) {
	switch level {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	}
	return 0, types.NewValidationError("errorCorrectionLevel must be one of: L, M, Q, H")
}

// ParseHexColor parses #RGB or #RRGGBB
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// encodePNG draws the module bitmap with a quiet zone of o.Margin modules, scaled to o.Size pixels
func encodePNG(content string, o Options) ([]byte, error) {
	level, err := recoveryLevel(o.ErrorCorrection)
	if err != nil {
		return nil, err
	}
	q, err := qrcode.New(content, level)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true

	dark, _ := ParseHexColor(o.DarkColor)
	light, _ := ParseHexColor(o.LightColor)

	bitmap := q.Bitmap()
	size, margin := o.Size.Int(), o.Margin.Int()
	modules := len(bitmap) + 2*margin

	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{light, dark})
	for y := 0; y < size; y++ {
		my := y*modules/size - margin
		for x := 0; x < size; x++ {
			mx := x*modules/size - margin
			if my >= 0 && mx >= 0 && my < len(bitmap) && mx < len(bitmap) && bitmap[my][mx] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateQRFileName builds "<item-slug>-<first 8 hex of qrID>.png"
func GenerateQRFileName(itemName, qrID string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(itemName), "-"), "-")
	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	if slug == "" {
		slug = "qr-code"
	}

	hex := strings.ReplaceAll(qrID, "-", "")
	if len(hex) > 8 {
		hex = hex[:8]
	}
	return fmt.Sprintf("%s-%s.png", slug, hex)
}
