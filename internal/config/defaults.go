package config

const (
	defaultConfigsDir    = "configs"
	defaultFragmentsDir  = "output"
	defaultPreviewsDir   = "previews"
	defaultShortcodesDir = "contents"
	defaultInboxDir      = "resources/to_upload"
	defaultUploadedDir   = "resources/uploaded"
	defaultRecordsFile   = "resources/upload_records.jsonl"
	defaultConfigGlob    = "*.info"

	defaultUploadHelper   = "picgo"
	defaultUploadTimeout  = 30
	defaultSettleMillis   = 500
	defaultUploadWorkers  = 2
	defaultClipboardWait  = 10
	defaultIdentityMode   = IdentityContent
	defaultRenderLanguage = "en"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Identity modes for upload.identity.
const (
	IdentityContent = "content"
	IdentityName    = "name"
)

// PathPlaceholder is replaced with the image path in upload.helper_args.
const PathPlaceholder = "{path}"

func defaultHelperArgs() []string {
	return []string{"upload", PathPlaceholder}
}

func defaultPatterns() []string {
	return []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.webp"}
}

// DefaultLabels returns the English section headings and captions.
func DefaultLabels() Labels {
	return Labels{
		Introduction:   "Introduction",
		Features:       "Features",
		Screenshots:    "Screenshots",
		Downloads:      "Downloads",
		Extra:          "Additional Information",
		Title:          "Title",
		DisplayName:    "Name",
		Version:        "Version",
		Filename:       "File",
		ExtractionCode: "Extraction code",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ConfigsDir:    defaultConfigsDir,
			FragmentsDir:  defaultFragmentsDir,
			PreviewsDir:   defaultPreviewsDir,
			ShortcodesDir: defaultShortcodesDir,
			InboxDir:      defaultInboxDir,
			UploadedDir:   defaultUploadedDir,
			RecordsFile:   defaultRecordsFile,
			ConfigGlob:    defaultConfigGlob,
			ConfigExclude: []string{"example.info"},
		},
		Render: Render{
			Lang:   defaultRenderLanguage,
			Labels: DefaultLabels(),
		},
		Upload: Upload{
			Helper:          defaultUploadHelper,
			HelperArgs:      defaultHelperArgs(),
			TimeoutSeconds:  defaultUploadTimeout,
			Identity:        defaultIdentityMode,
			Patterns:        defaultPatterns(),
			SettleMillis:    defaultSettleMillis,
			Workers:         defaultUploadWorkers,
			Clipboard:       true,
			WriteURLSidecar: true,

			ClipboardFallbackSeconds: defaultClipboardWait,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
