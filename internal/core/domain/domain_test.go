package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
)

func TestArchiveSource_ArchiveURL(t *testing.T) {
	tests := []struct {
		name string
		src  domain.ArchiveSource
		want string
	}{
		{
			name: "Constructed From Owner And Repo",
			src:  domain.ArchiveSource{Owner: "NixOS", Repo: "nixpkgs", Rev: "abc123"},
			want: "https://github.com/NixOS/nixpkgs/archive/abc123.tar.gz",
		},
		{
			name: "Explicit URL Wins",
			src: domain.ArchiveSource{
				Owner: "NixOS",
				Repo:  "nixpkgs",
				Rev:   "abc123",
				URL:   "https://mirror.example.com/nixpkgs-abc123.tar.gz",
			},
			want: "https://mirror.example.com/nixpkgs-abc123.tar.gz",
		},
		{
			name: "Full Commit SHA",
			src:  domain.ArchiveSource{Owner: "example", Repo: "extras", Rev: "aba12b614e1b6a0b5d713b53d78c96746ffdb544"},
			want: "https://github.com/example/extras/archive/aba12b614e1b6a0b5d713b53d78c96746ffdb544.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.src.ArchiveURL())
		})
	}
}

func TestArchiveSource_Slug(t *testing.T) {
	assert.Equal(t, "NixOS/nixpkgs", domain.ArchiveSource{Owner: "NixOS", Repo: "nixpkgs"}.Slug())
	assert.Equal(t, "https://x.example/a.tar.gz", domain.ArchiveSource{URL: "https://x.example/a.tar.gz"}.Slug())
}

func TestRevisionPin_Archive(t *testing.T) {
	pin := domain.RevisionPin{
		Owner:  "NixOS",
		Repo:   "nixpkgs",
		Rev:    "abc123",
		SHA256: "1111111111111111111111111111111111111111111111111111",
	}

	src := pin.Archive()
	assert.Equal(t, pin.Owner, src.Owner)
	assert.Equal(t, pin.Repo, src.Repo)
	assert.Equal(t, pin.Rev, src.Rev)
	assert.Equal(t, pin.SHA256, src.SHA256)
	assert.Equal(t, "https://github.com/NixOS/nixpkgs/archive/abc123.tar.gz", pin.ArchiveURL())
}

func TestOverlayEntry_Name(t *testing.T) {
	build := domain.OverlayEntry{Build: &domain.Recipe{Name: "mytool"}}
	assert.Equal(t, "mytool", build.Name())

	reexport := domain.OverlayEntry{Reexport: &domain.Reexport{Name: "fmtcheck", Attr: "fmtcheck"}}
	assert.Equal(t, "fmtcheck", reexport.Name())

	assert.Equal(t, "", domain.OverlayEntry{}.Name())
}

func TestPackageSet_InsertOverrides(t *testing.T) {
	set := domain.NewPackageSet()
	set.Insert(domain.Package{Attr: "hello", Rev: "r1", Origin: "base"})
	set.Insert(domain.Package{Attr: "hello", Rev: "r2", Origin: "tools"})

	require.Equal(t, 1, set.Len())
	pkg, ok := set.Lookup("hello")
	require.True(t, ok)
	assert.Equal(t, "r2", pkg.Rev)
	assert.Equal(t, "tools", pkg.Origin)
}

func TestPackageSet_AttrsSorted(t *testing.T) {
	set := domain.NewPackageSet()
	set.Insert(domain.Package{Attr: "zlib"})
	set.Insert(domain.Package{Attr: "acl"})
	set.Insert(domain.Package{Attr: "hello"})

	assert.Equal(t, []string{"acl", "hello", "zlib"}, set.Attrs())
}

func TestPackageSet_LookupMissing(t *testing.T) {
	set := domain.NewPackageSet()
	_, ok := set.Lookup("absent")
	assert.False(t, ok)
}

func TestFingerprint_Stable(t *testing.T) {
	a := domain.NewPackageSet()
	a.Insert(domain.Package{Attr: "hello", Rev: "r1", SourceHash: "h1", StorePath: "/s/1"})
	a.Insert(domain.Package{Attr: "zlib", Rev: "r2", SourceHash: "h2", StorePath: "/s/2"})

	// Same content, reversed insertion order.
	b := domain.NewPackageSet()
	b.Insert(domain.Package{Attr: "zlib", Rev: "r2", SourceHash: "h2", StorePath: "/s/2"})
	b.Insert(domain.Package{Attr: "hello", Rev: "r1", SourceHash: "h1", StorePath: "/s/1"})

	assert.Equal(t, domain.Fingerprint(a), domain.Fingerprint(b))
	assert.Len(t, domain.Fingerprint(a), 16)
}

func TestFingerprint_ContentSensitive(t *testing.T) {
	a := domain.NewPackageSet()
	a.Insert(domain.Package{Attr: "hello", Rev: "r1", SourceHash: "h1", StorePath: "/s/1"})

	b := domain.NewPackageSet()
	b.Insert(domain.Package{Attr: "hello", Rev: "r2", SourceHash: "h1", StorePath: "/s/1"})

	assert.NotEqual(t, domain.Fingerprint(a), domain.Fingerprint(b))
}
