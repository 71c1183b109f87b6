package common

import "fmt"

// Must follow this schema to be accepted by Pub/Sub
type CompressedMsgSchema struct {
	UID              string `json:"UID"`
	OriginalFilePath string `json:"OriginalFilePath"`
	FreqTablePath    string `json:"FreqTablePath"`
}

// Must follow this schema to be accepted by Pub/Sub. The frequency table is
// the one the compressed file was encoded with; the code tree is rebuilt from
// it.
type DecompressedMsgSchema struct {
	UID                string `json:"UID"`
	CompressedFilePath string `json:"CompressedFilePath"`
	FreqTablePath      string `json:"FreqTablePath"`
}

// CompressedExt is the extension of compressed artifacts.
const CompressedExt = ".ranran"

func OriginalFilePath(jobID, filename string) string {
	return fmt.Sprintf("%s/original_%s", jobID, filename)
}

func FreqTablePath(jobID string) string {
	return fmt.Sprintf("%s/frequency_table.json", jobID)
}

func CompressedFilePath(jobID string) string {
	return fmt.Sprintf("%s/compressed%s", jobID, CompressedExt)
}

func UploadedFilePath(jobID, filename string) string {
	return fmt.Sprintf("%s/%s", jobID, filename)
}

func DecompressedFilePath(jobID string) string {
	return fmt.Sprintf("%s/file.txt", jobID)
}
