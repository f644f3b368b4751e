// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/MKhiriev/go-team-sync/models"
)

func renderBuildInfoWindow(monitor, daemon models.AppBuildInfo) string {
	var b strings.Builder

	writeBuildInfo(&b, "Monitor", monitor)
	b.WriteString("\n\n")
	writeBuildInfo(&b, "Sync daemon", daemon)

	return renderPage(titleStyle.Render("BUILD INFO"), b.String(), helpStyle.Render("esc: back"))
}

func writeBuildInfo(b *strings.Builder, name string, info models.AppBuildInfo) {
	b.WriteString(name)
	b.WriteString("\n  Version: ")
	b.WriteString(valueOrNA(info.BuildVersion))
	b.WriteString("\n  Date:    ")
	b.WriteString(valueOrNA(info.BuildDate))
	b.WriteString("\n  Commit:  ")
	b.WriteString(valueOrNA(info.BuildCommit))
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
