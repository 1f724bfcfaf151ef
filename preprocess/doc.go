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


// Package preprocess turns repository records and search queries into the
// bounded canonical text that is fed to the embedding model.
//
// Record text is built from the identity key (twice, for emphasis), the
// primary language, the cleaned description, the topics and, when a README
// is supplied, a cleaned excerpt that skips the title and badge lines.
// The result is lowercased, whitespace-collapsed and truncated to a word
// budget approximating the encoder's token limit.
//
// All functions are deterministic. Clean is idempotent.
package preprocess
