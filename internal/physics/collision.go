package physics

import (
	"github.com/annel0/mmo-game/internal/vec"
)

// BoxCollider3D — прямоугольный параллелепипед-коллайдер в истинном 3D мире,
// центрированный по X/Z и опирающийся основанием на Y (как у сущности,
// стоящей на блоке, а не парящей по центру своей высоты).
type BoxCollider3D struct {
	Width  int // протяжённость по X и Z
	Height int // протяжённость по Y, от опорной точки вверх
}

// NewBoxCollider3D создаёт 3D-коллайдер с указанными размерами.
func NewBoxCollider3D(width, height int) *BoxCollider3D {
	return &BoxCollider3D{Width: width, Height: height}
}

// CollisionCells3D возвращает ячейки блоков, которые нужно проверить на
// проходимость для сущности данного коллайдера, стоящей в позиции pos —
// основание на pos.Y, остальные Height-1 слоёв выше.
func CollisionCells3D(pos vec.Vec3, collider *BoxCollider3D) []vec.Vec3 {
	half := collider.Width / 2

	if collider.Width <= 1 {
		cells := make([]vec.Vec3, 0, collider.Height)
		for dy := 0; dy < collider.Height; dy++ {
			cells = append(cells, vec.Vec3{X: pos.X, Y: pos.Y + dy, Z: pos.Z})
		}
		return cells
	}

	corners := [4][2]int{
		{-half, -half},
		{half - 1, -half},
		{-half, half - 1},
		{half - 1, half - 1},
	}
	cells := make([]vec.Vec3, 0, len(corners)*collider.Height)
	for dy := 0; dy < collider.Height; dy++ {
		for _, c := range corners {
			cells = append(cells, vec.Vec3{X: pos.X + c[0], Y: pos.Y + dy, Z: pos.Z + c[1]})
		}
	}
	return cells
}

// CanMoveToPosition3D проверяет, что каждая ячейка, занимаемая коллайдером в
// newPos, проходима согласно blockChecker.
func CanMoveToPosition3D(newPos vec.Vec3, collider *BoxCollider3D, blockChecker func(vec.Vec3) bool) bool {
	for _, cell := range CollisionCells3D(newPos, collider) {
		if !blockChecker(cell) {
			return false
		}
	}
	return true
}
