package capturedriver

import "github.com/bryanchriswhite/vcsengine/internal/modestore"

// Bounds reads a driver's default/min/max color and geometry parameters
// and assembles them into a modestore.DriverBounds, which the ModeStore
// uses to manufacture default entries (spec.md §4.3).
func Bounds(d Driver) modestore.DriverBounds {
	defC, minC, maxC := d.DefaultColorParams(), d.MinColorParams(), d.MaxColorParams()
	defG, minG, maxG := d.DefaultGeometryParams(), d.MinGeometryParams(), d.MaxGeometryParams()

	return modestore.DriverBounds{
		Bright:      modestore.Bounds{Default: defC.Bright, Min: minC.Bright, Max: maxC.Bright},
		Contr:       modestore.Bounds{Default: defC.Contr, Min: minC.Contr, Max: maxC.Contr},
		RedBright:   modestore.Bounds{Default: defC.RedBright, Min: minC.RedBright, Max: maxC.RedBright},
		GreenBright: modestore.Bounds{Default: defC.GreenBright, Min: minC.GreenBright, Max: maxC.GreenBright},
		BlueBright:  modestore.Bounds{Default: defC.BlueBright, Min: minC.BlueBright, Max: maxC.BlueBright},
		RedContr:    modestore.Bounds{Default: defC.RedContr, Min: minC.RedContr, Max: maxC.RedContr},
		GreenContr:  modestore.Bounds{Default: defC.GreenContr, Min: minC.GreenContr, Max: maxC.GreenContr},
		BlueContr:   modestore.Bounds{Default: defC.BlueContr, Min: minC.BlueContr, Max: maxC.BlueContr},

		Phase:      modestore.Bounds{Default: defG.Phase, Min: minG.Phase, Max: maxG.Phase},
		BlackLevel: modestore.Bounds{Default: defG.BlackLevel, Min: minG.BlackLevel, Max: maxG.BlackLevel},
		HorPos:     modestore.Bounds{Default: defG.HorPos, Min: minG.HorPos, Max: maxG.HorPos},
		VerPos:     modestore.Bounds{Default: defG.VerPos, Min: minG.VerPos, Max: maxG.VerPos},
		HorScale:   modestore.Bounds{Default: defG.HorScale, Min: minG.HorScale, Max: maxG.HorScale},
	}
}
