package ports

// OverlaySurface is a transparent drawing layer stacked on a VideoSurface.
// Its intrinsic size is the resolution of its backing canvas, its display
// box is where the host shows it.
type OverlaySurface interface {
	IntrinsicSize() Size

	// SetIntrinsicSize resizes the backing canvas, discarding its contents.
	SetIntrinsicSize(size Size)

	DisplayBox() Box
	SetDisplayBox(box Box)

	// Canvas returns the drawing context, nil while the intrinsic size is zero.
	Canvas() Canvas

	Clear()
}
