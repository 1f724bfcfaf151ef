package core

import (
	"errors"
	"testing"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *Record
		wantErr error
	}{
		{
			name: "valid record",
			record: &Record{
				Platform:    PlatformGitHub,
				FullName:    "user/logger",
				Description: "A logging library",
			},
			wantErr: nil,
		},
		{
			name: "valid record without descriptive fields",
			record: &Record{
				Platform: PlatformGitLab,
				FullName: "group/project",
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidRecord,
		},
		{
			name: "unknown platform",
			record: &Record{
				Platform: Platform("sourceforge"),
				FullName: "user/repo",
			},
			wantErr: ErrInvalidRecord,
		},
		{
			name: "empty full name",
			record: &Record{
				Platform: PlatformBitbucket,
				FullName: "  ",
			},
			wantErr: ErrInvalidRecord,
		},
		{
			name: "full name with whitespace",
			record: &Record{
				Platform: PlatformGitHub,
				FullName: "user/my repo",
			},
			wantErr: ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "github", want: PlatformGitHub},
		{in: "GitLab", want: PlatformGitLab},
		{in: " BITBUCKET ", want: PlatformBitbucket},
		{in: "gitea", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePlatform(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlatform(%q) unexpected error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePlatform(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
