// metrics.go
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "qrguide"

// Scan outcomes
const (
	ScanServed   = "served"
	ScanInactive = "inactive"
	ScanNotFound = "not_found"
)

var (
	// QRScansTotal counts public content resolutions by outcome
	QRScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_qr_scans_total",
			Help: "Total number of QR content resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// QRCodesGenerated counts QR codes created, single or batch
	QRCodesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_qr_codes_generated_total",
			Help: "Total number of QR codes generated",
		},
		[]string{"mode"},
	)

	// ContentViewDuration observes client-reported time on a content page
	ContentViewDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_content_view_duration_seconds",
			Help:    "Client reported content page view duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

// RecordScan records the outcome of a public content lookup
func RecordScan(outcome string) {
	QRScansTotal.WithLabelValues(outcome).Inc()
}
