package entity

import "fmt"

// Rect прямоугольная область в пикселях, полуоткрытая: [X0, X1) x [Y0, Y1)
type Rect struct {
	X0 int // левая граница (включительно)
	Y0 int // верхняя граница (включительно)
	X1 int // правая граница (не включительно)
	Y1 int // нижняя граница (не включительно)
}

// Dx возвращает ширину области
func (r Rect) Dx() int {
	return r.X1 - r.X0
}

// Dy возвращает высоту области
func (r Rect) Dy() int {
	return r.Y1 - r.Y0
}

// Empty сообщает, что в области нет ни одного пикселя
func (r Rect) Empty() bool {
	return r.Dx() <= 0 || r.Dy() <= 0
}

// Within проверяет, что область целиком лежит в изображении width x height.
func (r Rect) Within(width, height int) bool {
	return r.X0 >= 0 && r.Y0 >= 0 && r.X1 <= width && r.Y1 <= height
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X0, r.Y0, r.X1, r.Y1)
}
