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


package ai

// Known embedding models.
const (
	ModelMiniLM      = "sentence-transformers/all-MiniLM-L6-v2"
	ModelBGESmall    = "BAAI/bge-small-en-v1.5"
	ModelBGEBase     = "BAAI/bge-base-en-v1.5"
	DefaultModel     = ModelBGESmall
	DefaultDimension = 384
)

var modelDimensions = map[string]int{
	ModelMiniLM:   384,
	ModelBGESmall: 384,
	ModelBGEBase:  768,
}

// DimensionFor returns the embedding length produced by model.
// Unknown models are assumed to produce DefaultDimension.
func DimensionFor(model string) int {
	if dim, ok := modelDimensions[model]; ok {
		return dim
	}
	return DefaultDimension
}
