// Package canvas paints laid out scenes and handles paging, clicks and
// highlight arrows.
//
// # Surfaces
//
// A [Canvas] draws through the [Surface] interface. Two surfaces are
// provided:
//
//   - [Raster]: pixels via gogpu/gg, encodable as PNG
//   - [SVG]: a self-contained SVG document
//
// # Readiness
//
// Commit dots are sprites, so nothing is painted until a [SpriteSheet] is
// available. The sheet is usually loaded in the background with [Load],
// which returns an [Asset] that moves once from Loading to Ready or Failed.
// Callers either register [Asset.OnComplete] and call [Canvas.Ready] from
// it, or use [Canvas.Mount] to wait with a deadline:
//
//	asset := canvas.Load(ctx, "sprites", canvas.Builtin())
//	cv := canvas.New(canvas.NewRaster(800, 600, faces))
//	if err := cv.Mount(ctx, asset, s); err != nil {
//	    return err // ASSET_TIMEOUT, ASSET_LOAD
//	}
//
// [Canvas.Render] before a sheet is supplied returns [ErrNotReady].
//
// # Painting
//
// Every Render discards the previous display list and rebuilds it in a
// fixed order: lines, boundary markers, commit dots, labels, texts. Labels
// and texts sharing a row are packed left to right using a row cursor that
// lives for a single Render call.
//
// # Pages
//
// The stage is the scene height plus a bottom margin. It is shown one page
// at a time; [Canvas.Next] and [Canvas.Previous] move between pages by
// translating the stage and repainting, without touching the display list.
package canvas
