package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// DocumentType selects the instruction prompt used when analyzing a document.
type DocumentType string

const (
	DocTypeTransporter DocumentType = "transporter"
	DocTypeSupplier    DocumentType = "supplier"
	DocTypeGeneric     DocumentType = "generic"
	DocTypePippinTax   DocumentType = "pippin_tax_assessment"
)

// ValidDocumentTypes is the set of recognized document types.
var ValidDocumentTypes = map[DocumentType]bool{
	DocTypeTransporter: true,
	DocTypeSupplier:    true,
	DocTypeGeneric:     true,
	DocTypePippinTax:   true,
}

// Provider names the supported LLM analyzer backends.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
)

// ValidProviders is the set of supported analyzer providers.
var ValidProviders = map[Provider]bool{
	ProviderGemini: true,
	ProviderOpenAI: true,
	ProviderClaude: true,
}
