// Copyright 2024 The NebulaStream Core Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package planmodel

// WindowType distinguishes tumbling from sliding windows (spec §3).
type WindowType int

const (
	Tumbling WindowType = iota
	Sliding
)

func (w WindowType) String() string {
	if w == Sliding {
		return "sliding"
	}
	return "tumbling"
}

// TimeCharacteristic selects whether a window is keyed by wall-clock
// ingestion time or by a field of the input record (spec §4.6).
type TimeCharacteristic int

const (
	IngestionTime TimeCharacteristic = iota
	EventTime
)

// WindowSpec fully describes a time window: its type, size, slide,
// and time characteristic (spec §3/§4.6). SizeMillis and SlideMillis
// are in milliseconds, matching the millisecond timestamps used
// throughout the slice store.
type WindowSpec struct {
	Type        WindowType
	SizeMillis  int64
	SlideMillis int64 // for Tumbling, SlideMillis == SizeMillis
	TimeChar    TimeCharacteristic
	// TimeField is the qualified column read as the event timestamp
	// when TimeChar == EventTime; ignored for IngestionTime.
	TimeField string
}

// NumSlides returns the number of slide-sized slices a single window
// spans; ceil(size/slide). For tumbling windows this is always 1.
func (w WindowSpec) NumSlides() int {
	if w.SlideMillis <= 0 {
		return 1
	}
	n := w.SizeMillis / w.SlideMillis
	if w.SizeMillis%w.SlideMillis != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return int(n)
}

// Equal reports whether two window specs describe the same window
// shape. Per spec §4.2, windows differing in time characteristic,
// size, or slide are never contained in one another, so containment
// reduces to this equality check.
func (w WindowSpec) Equal(o WindowSpec) bool {
	return w.Type == o.Type && w.SizeMillis == o.SizeMillis &&
		w.SlideMillis == o.SlideMillis && w.TimeChar == o.TimeChar &&
		w.TimeField == o.TimeField
}

// AggKind enumerates the supported aggregation functions (spec §3/§4.7).
type AggKind int

const (
	AggSum AggKind = iota
	AggMin
	AggMax
	AggAvg
	AggCount
)

func (k AggKind) String() string {
	switch k {
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAvg:
		return "avg"
	case AggCount:
		return "count"
	default:
		return "unknown"
	}
}

// AggSpec names one aggregate computed by a Window operator: apply
// Kind to Field, and bind the result to the output column As.
type AggSpec struct {
	Kind  AggKind
	Field string // qualified input column; ignored for AggCount over "*"
	As    string
}
