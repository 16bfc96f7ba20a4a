// Package ocr defines the contract for plugging OCR engines into the image
// backend so raster content gets searchable text. Engines may be local
// libraries or remote services; callers only see Input and Result.
package ocr
