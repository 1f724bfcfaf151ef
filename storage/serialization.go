// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/poiesic/reposcout/core"
)

// MarshalRecordDoc serializes a RecordDoc to bytes.
func MarshalRecordDoc(doc *core.RecordDoc) []byte {
	buf := make([]byte, core.RecordDocMUS.Size(*doc))
	core.RecordDocMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalRecordDoc deserializes a RecordDoc from bytes.
func UnmarshalRecordDoc(data []byte) (*core.RecordDoc, error) {
	doc, n, err := core.RecordDocMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedData, len(data)-n)
	}
	return &doc, nil
}
