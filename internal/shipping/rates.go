package shipping

// rates maps wilaya codes to delivery prices in Algerian dinars. The shop
// negotiates these with the carrier; a nil stopdesk price means the carrier
// has no pickup desk in that wilaya.
var rates = map[int]Rate{
	1:  {Home: price(1000), Stopdesk: price(600)},
	2:  {Home: price(550), Stopdesk: price(350)},
	3:  {Home: price(700), Stopdesk: price(450)},
	4:  {Home: price(600), Stopdesk: price(400)},
	5:  {Home: price(600), Stopdesk: price(400)},
	6:  {Home: price(550), Stopdesk: price(350)},
	7:  {Home: price(700), Stopdesk: price(450)},
	8:  {Home: price(900), Stopdesk: price(550)},
	9:  {Home: price(450), Stopdesk: price(300)},
	10: {Home: price(500), Stopdesk: price(350)},
	11: {Home: price(1400), Stopdesk: price(800)},
	12: {Home: price(650), Stopdesk: price(450)},
	13: {Home: price(600), Stopdesk: price(400)},
	14: {Home: price(600), Stopdesk: price(400)},
	15: {Home: price(500), Stopdesk: price(350)},
	16: {Home: price(400), Stopdesk: price(250)},
	17: {Home: price(700), Stopdesk: price(450)},
	18: {Home: price(600), Stopdesk: price(400)},
	19: {Home: price(550), Stopdesk: price(350)},
	20: {Home: price(650), Stopdesk: price(450)},
	21: {Home: price(600), Stopdesk: price(400)},
	22: {Home: price(600), Stopdesk: price(400)},
	23: {Home: price(600), Stopdesk: price(400)},
	24: {Home: price(650), Stopdesk: price(450)},
	25: {Home: price(550), Stopdesk: price(350)},
	26: {Home: price(550), Stopdesk: price(350)},
	27: {Home: price(600), Stopdesk: price(400)},
	28: {Home: price(650), Stopdesk: price(450)},
	29: {Home: price(600), Stopdesk: price(400)},
	30: {Home: price(900), Stopdesk: price(550)},
	31: {Home: price(500), Stopdesk: price(350)},
	32: {Home: price(900), Stopdesk: price(550)},
	33: {Home: price(1400), Stopdesk: nil},
	34: {Home: price(600), Stopdesk: price(400)},
	35: {Home: price(450), Stopdesk: price(300)},
	36: {Home: price(650), Stopdesk: price(450)},
	37: {Home: price(1400), Stopdesk: nil},
	38: {Home: price(650), Stopdesk: price(450)},
	39: {Home: price(800), Stopdesk: price(500)},
	40: {Home: price(650), Stopdesk: price(450)},
	41: {Home: price(650), Stopdesk: price(450)},
	42: {Home: price(450), Stopdesk: price(300)},
	43: {Home: price(600), Stopdesk: price(400)},
	44: {Home: price(550), Stopdesk: price(350)},
	45: {Home: price(900), Stopdesk: price(550)},
	46: {Home: price(600), Stopdesk: price(400)},
	47: {Home: price(850), Stopdesk: price(500)},
	48: {Home: price(600), Stopdesk: price(400)},
	49: {Home: price(1200), Stopdesk: nil},
	50: {Home: price(1600), Stopdesk: nil},
	51: {Home: price(750), Stopdesk: price(500)},
	52: {Home: price(1100), Stopdesk: nil},
	53: {Home: price(1300), Stopdesk: nil},
	54: {Home: price(1600), Stopdesk: nil},
	55: {Home: price(850), Stopdesk: price(500)},
	56: {Home: price(1500), Stopdesk: nil},
	57: {Home: price(800), Stopdesk: price(500)},
	58: {Home: price(950), Stopdesk: price(550)},
}
