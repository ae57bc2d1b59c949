package media

// WorkItem adalah payload webhook yang memicu satu analisis file.
// ObjectKey menunjuk file di object storage; field identitas boleh kosong
// dan akan di-backfill dari katalog sebelum validasi.
type WorkItem struct {
	FileMD5         string `json:"file_md5"`
	FileName        string `json:"file_name,omitempty"`
	Kind            Kind   `json:"kind,omitempty"`
	ObjectKey       string `json:"object_key,omitempty"`
	OwnerID         string `json:"owner_id,omitempty"`
	ProjectID       string `json:"project_id,omitempty"`
	ForceReAnalysis bool   `json:"force_re_analysis,omitempty"`
}

// CatalogEntry adalah baris katalog file yang dipakai untuk backfill work item.
type CatalogEntry struct {
	FileMD5   string
	FileName  string
	Kind      Kind
	ObjectKey string
	OwnerID   string
	ProjectID string
}

// Backfill mengisi field kosong dari katalog; nilai yang sudah ada menang.
func (w *WorkItem) Backfill(c *CatalogEntry) {
	if c == nil {
		return
	}
	if w.FileName == "" {
		w.FileName = c.FileName
	}
	if w.Kind == "" {
		w.Kind = c.Kind
	}
	if w.ObjectKey == "" {
		w.ObjectKey = c.ObjectKey
	}
	if w.OwnerID == "" {
		w.OwnerID = c.OwnerID
	}
	if w.ProjectID == "" {
		w.ProjectID = c.ProjectID
	}
}
