package models

import "math"

const (
	// DefaultRulePriority applies when a stored rule carries no usable priority
	DefaultRulePriority = 2.0
	// DefaultGroupPriority applies when a group carries no usable priority
	DefaultGroupPriority = 3.0
	// DefaultMatchPriority is the priority of the synthetic no-match default
	DefaultMatchPriority = 999
	// MaxRecentActivity bounds the stats activity log
	MaxRecentActivity = 10
)

// PriorityOrDefault normalizes a priority before comparison. Zero, NaN and
// infinities all fall back to the supplied default so sorts never see
// unordered values.
func PriorityOrDefault(p, def float64) float64 {
	if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return def
	}
	return p
}

// DefaultSettings returns the settings used before the user has saved any
func DefaultSettings() Settings {
	return Settings{
		DefaultFolder:         "Downloads",
		ConflictResolution:    ConflictAuto,
		ConfirmationEnabled:   true,
		ConfirmationTimeoutMs: 5000,
	}
}

// DefaultGroups returns the six built-in file-type groups. They are used only
// when the store holds no groups yet.
func DefaultGroups() map[string]Group {
	return map[string]Group{
		"videos": {
			Name:       "videos",
			Extensions: "mp4,mkv,avi,mov,wmv,flv,webm,m4v",
			Folder:     "Videos",
			Priority:   DefaultGroupPriority,
			Enabled:    true,
		},
		"images": {
			Name:       "images",
			Extensions: "jpg,jpeg,png,gif,webp,svg,bmp,tiff,ico",
			Folder:     "Images",
			Priority:   DefaultGroupPriority,
			Enabled:    true,
		},
		"documents": {
			Name:       "documents",
			Extensions: "pdf,doc,docx,xls,xlsx,ppt,pptx,txt,odt,csv",
			Folder:     "Documents",
			Priority:   DefaultGroupPriority,
			Enabled:    true,
		},
		"3d-files": {
			Name:       "3d-files",
			Extensions: "stl,obj,3mf,step,stp,gcode,fbx,blend",
			Folder:     "3D Files",
			Priority:   DefaultGroupPriority,
			Enabled:    true,
		},
		"archives": {
			Name:       "archives",
			Extensions: "zip,rar,7z,tar,gz,bz2,xz,iso",
			Folder:     "Archives",
			Priority:   DefaultGroupPriority,
			Enabled:    true,
		},
		"software": {
			Name:       "software",
			Extensions: "exe,msi,dmg,pkg,deb,rpm,appimage,apk",
			Folder:     "Software",
			Priority:   DefaultGroupPriority,
			Enabled:    true,
		},
	}
}
