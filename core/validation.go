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


package core

import (
	"fmt"
	"strings"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Record must not be nil
//   - Platform must be one of the known platforms
//   - FullName must not be empty and must not contain whitespace
//
// NOT validated (optional descriptive fields):
//   - Description, Language, Topics (a record may still have an empty canonical text)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if err := ValidatePlatform(record.Platform); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if strings.TrimSpace(record.FullName) == "" {
		return fmt.Errorf("%w: full name is empty", ErrInvalidRecord)
	}
	if strings.ContainsAny(record.FullName, " \t\r\n") {
		return fmt.Errorf("%w: full name %q contains whitespace", ErrInvalidRecord, record.FullName)
	}

	return nil
}

// ValidatePlatform validates that a Platform has a known value.
func ValidatePlatform(platform Platform) error {
	switch platform {
	case PlatformGitHub, PlatformGitLab, PlatformBitbucket:
		return nil
	}
	return fmt.Errorf("unknown platform %q", platform)
}

// ParsePlatform converts a user-supplied platform name, case-insensitively.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "github":
		return PlatformGitHub, nil
	case "gitlab":
		return PlatformGitLab, nil
	case "bitbucket":
		return PlatformBitbucket, nil
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrInvalidRecord, name)
}
