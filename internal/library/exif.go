package library

import (
	"os"
	"time"

	"github.com/bep/imagemeta"
)

// exifTimeLayout is the EXIF DateTime format.
const exifTimeLayout = "2006:01:02 15:04:05"

// exifCreatedTime extracts the capture time from the file's EXIF data.
// Graceful degradation: any parse problem just reports no timestamp.
func exifCreatedTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	var captured time.Time
	err = imagemeta.Decode(imagemeta.Options{
		R:       f,
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "DateTimeOriginal" || ti.Tag == "DateTimeDigitized"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s, ok := ti.Value.(string)
			if !ok {
				return nil
			}
			t, perr := time.ParseInLocation(exifTimeLayout, s, time.Local)
			if perr != nil {
				return nil
			}
			// DateTimeOriginal wins over DateTimeDigitized.
			if captured.IsZero() || ti.Tag == "DateTimeOriginal" {
				captured = t
			}
			return nil
		},
	})
	if err != nil || captured.IsZero() {
		return time.Time{}, false
	}
	return captured, true
}
