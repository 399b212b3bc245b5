package shipping

// communes lists the municipalities the storefront delivers to, grouped by
// wilaya code. The carrier only serves the chef-lieu and the larger towns in
// most wilayas, so this is deliberately not the full ONS commune register.
// Codes restart at 1 inside each wilaya, with the chef-lieu first.
var communes = []Commune{
	{Code: 1, Name: "Adrar", ArabicName: "أدرار", RegionCode: 1},
	{Code: 2, Name: "Reggane", ArabicName: "رقان", RegionCode: 1},
	{Code: 1, Name: "Chlef", ArabicName: "الشلف", RegionCode: 2},
	{Code: 2, Name: "Ténès", ArabicName: "تنس", RegionCode: 2},
	{Code: 1, Name: "Laghouat", ArabicName: "الأغواط", RegionCode: 3},
	{Code: 2, Name: "Aflou", ArabicName: "أفلو", RegionCode: 3},
	{Code: 1, Name: "Oum El Bouaghi", ArabicName: "أم البواقي", RegionCode: 4},
	{Code: 2, Name: "Aïn M'lila", ArabicName: "عين مليلة", RegionCode: 4},
	{Code: 1, Name: "Batna", ArabicName: "باتنة", RegionCode: 5},
	{Code: 2, Name: "Barika", ArabicName: "بريكة", RegionCode: 5},
	{Code: 1, Name: "Béjaïa", ArabicName: "بجاية", RegionCode: 6},
	{Code: 2, Name: "Akbou", ArabicName: "أقبو", RegionCode: 6},
	{Code: 1, Name: "Biskra", ArabicName: "بسكرة", RegionCode: 7},
	{Code: 2, Name: "Tolga", ArabicName: "طولقة", RegionCode: 7},
	{Code: 1, Name: "Béchar", ArabicName: "بشار", RegionCode: 8},
	{Code: 1, Name: "Blida", ArabicName: "البليدة", RegionCode: 9},
	{Code: 2, Name: "Boufarik", ArabicName: "بوفاريك", RegionCode: 9},
	{Code: 3, Name: "Larbaâ", ArabicName: "الأربعاء", RegionCode: 9},
	{Code: 1, Name: "Bouira", ArabicName: "البويرة", RegionCode: 10},
	{Code: 2, Name: "Lakhdaria", ArabicName: "الأخضرية", RegionCode: 10},
	{Code: 1, Name: "Tamanrasset", ArabicName: "تمنراست", RegionCode: 11},
	{Code: 1, Name: "Tébessa", ArabicName: "تبسة", RegionCode: 12},
	{Code: 2, Name: "Bir El Ater", ArabicName: "بئر العاتر", RegionCode: 12},
	{Code: 1, Name: "Tlemcen", ArabicName: "تلمسان", RegionCode: 13},
	{Code: 2, Name: "Maghnia", ArabicName: "مغنية", RegionCode: 13},
	{Code: 1, Name: "Tiaret", ArabicName: "تيارت", RegionCode: 14},
	{Code: 2, Name: "Frenda", ArabicName: "فرندة", RegionCode: 14},
	{Code: 1, Name: "Tizi Ouzou", ArabicName: "تيزي وزو", RegionCode: 15},
	{Code: 2, Name: "Azazga", ArabicName: "عزازقة", RegionCode: 15},
	{Code: 3, Name: "Draâ Ben Khedda", ArabicName: "ذراع بن خدة", RegionCode: 15},
	{Code: 1, Name: "Alger-Centre", ArabicName: "الجزائر الوسطى", RegionCode: 16},
	{Code: 2, Name: "Bab Ezzouar", ArabicName: "باب الزوار", RegionCode: 16},
	{Code: 3, Name: "Birkhadem", ArabicName: "بئر خادم", RegionCode: 16},
	{Code: 4, Name: "El Harrach", ArabicName: "الحراش", RegionCode: 16},
	{Code: 5, Name: "Hussein Dey", ArabicName: "حسين داي", RegionCode: 16},
	{Code: 6, Name: "Bab El Oued", ArabicName: "باب الوادي", RegionCode: 16},
	{Code: 1, Name: "Djelfa", ArabicName: "الجلفة", RegionCode: 17},
	{Code: 2, Name: "Messaad", ArabicName: "مسعد", RegionCode: 17},
	{Code: 1, Name: "Jijel", ArabicName: "جيجل", RegionCode: 18},
	{Code: 2, Name: "Taher", ArabicName: "الطاهير", RegionCode: 18},
	{Code: 1, Name: "Sétif", ArabicName: "سطيف", RegionCode: 19},
	{Code: 2, Name: "El Eulma", ArabicName: "العلمة", RegionCode: 19},
	{Code: 3, Name: "Aïn Oulmene", ArabicName: "عين ولمان", RegionCode: 19},
	{Code: 1, Name: "Saïda", ArabicName: "سعيدة", RegionCode: 20},
	{Code: 1, Name: "Skikda", ArabicName: "سكيكدة", RegionCode: 21},
	{Code: 2, Name: "Collo", ArabicName: "القل", RegionCode: 21},
	{Code: 1, Name: "Sidi Bel Abbès", ArabicName: "سيدي بلعباس", RegionCode: 22},
	{Code: 1, Name: "Annaba", ArabicName: "عنابة", RegionCode: 23},
	{Code: 2, Name: "El Bouni", ArabicName: "البوني", RegionCode: 23},
	{Code: 1, Name: "Guelma", ArabicName: "قالمة", RegionCode: 24},
	{Code: 1, Name: "Constantine", ArabicName: "قسنطينة", RegionCode: 25},
	{Code: 2, Name: "El Khroub", ArabicName: "الخروب", RegionCode: 25},
	{Code: 3, Name: "Hamma Bouziane", ArabicName: "حامة بوزيان", RegionCode: 25},
	{Code: 1, Name: "Médéa", ArabicName: "المدية", RegionCode: 26},
	{Code: 2, Name: "Berrouaghia", ArabicName: "البرواقية", RegionCode: 26},
	{Code: 1, Name: "Mostaganem", ArabicName: "مستغانم", RegionCode: 27},
	{Code: 1, Name: "M'Sila", ArabicName: "المسيلة", RegionCode: 28},
	{Code: 2, Name: "Bou Saâda", ArabicName: "بوسعادة", RegionCode: 28},
	{Code: 1, Name: "Mascara", ArabicName: "معسكر", RegionCode: 29},
	{Code: 2, Name: "Sig", ArabicName: "سيق", RegionCode: 29},
	{Code: 1, Name: "Ouargla", ArabicName: "ورقلة", RegionCode: 30},
	{Code: 2, Name: "Hassi Messaoud", ArabicName: "حاسي مسعود", RegionCode: 30},
	{Code: 1, Name: "Oran", ArabicName: "وهران", RegionCode: 31},
	{Code: 2, Name: "Bir El Djir", ArabicName: "بئر الجير", RegionCode: 31},
	{Code: 3, Name: "Es Sénia", ArabicName: "السانية", RegionCode: 31},
	{Code: 4, Name: "Arzew", ArabicName: "أرزيو", RegionCode: 31},
	{Code: 1, Name: "El Bayadh", ArabicName: "البيض", RegionCode: 32},
	{Code: 1, Name: "Illizi", ArabicName: "إليزي", RegionCode: 33},
	{Code: 1, Name: "Bordj Bou Arréridj", ArabicName: "برج بوعريريج", RegionCode: 34},
	{Code: 2, Name: "Ras El Oued", ArabicName: "رأس الوادي", RegionCode: 34},
	{Code: 1, Name: "Boumerdès", ArabicName: "بومرداس", RegionCode: 35},
	{Code: 2, Name: "Boudouaou", ArabicName: "بودواو", RegionCode: 35},
	{Code: 3, Name: "Bordj Menaïel", ArabicName: "برج منايل", RegionCode: 35},
	{Code: 1, Name: "El Tarf", ArabicName: "الطارف", RegionCode: 36},
	{Code: 2, Name: "El Kala", ArabicName: "القالة", RegionCode: 36},
	{Code: 1, Name: "Tindouf", ArabicName: "تندوف", RegionCode: 37},
	{Code: 1, Name: "Tissemsilt", ArabicName: "تيسمسيلت", RegionCode: 38},
	{Code: 1, Name: "El Oued", ArabicName: "الوادي", RegionCode: 39},
	{Code: 2, Name: "Guemar", ArabicName: "قمار", RegionCode: 39},
	{Code: 1, Name: "Khenchela", ArabicName: "خنشلة", RegionCode: 40},
	{Code: 1, Name: "Souk Ahras", ArabicName: "سوق أهراس", RegionCode: 41},
	{Code: 1, Name: "Tipaza", ArabicName: "تيبازة", RegionCode: 42},
	{Code: 2, Name: "Koléa", ArabicName: "القليعة", RegionCode: 42},
	{Code: 3, Name: "Cherchell", ArabicName: "شرشال", RegionCode: 42},
	{Code: 1, Name: "Mila", ArabicName: "ميلة", RegionCode: 43},
	{Code: 2, Name: "Chelghoum Laïd", ArabicName: "شلغوم العيد", RegionCode: 43},
	{Code: 1, Name: "Aïn Defla", ArabicName: "عين الدفلى", RegionCode: 44},
	{Code: 2, Name: "Khemis Miliana", ArabicName: "خميس مليانة", RegionCode: 44},
	{Code: 1, Name: "Naâma", ArabicName: "النعامة", RegionCode: 45},
	{Code: 2, Name: "Mécheria", ArabicName: "مشرية", RegionCode: 45},
	{Code: 1, Name: "Aïn Témouchent", ArabicName: "عين تموشنت", RegionCode: 46},
	{Code: 1, Name: "Ghardaïa", ArabicName: "غرداية", RegionCode: 47},
	{Code: 2, Name: "Metlili", ArabicName: "متليلي", RegionCode: 47},
	{Code: 1, Name: "Relizane", ArabicName: "غليزان", RegionCode: 48},
	{Code: 2, Name: "Oued Rhiou", ArabicName: "وادي رهيو", RegionCode: 48},
	{Code: 1, Name: "Timimoun", ArabicName: "تيميمون", RegionCode: 49},
	{Code: 1, Name: "Bordj Badji Mokhtar", ArabicName: "برج باجي مختار", RegionCode: 50},
	{Code: 1, Name: "Ouled Djellal", ArabicName: "أولاد جلال", RegionCode: 51},
	{Code: 2, Name: "Sidi Khaled", ArabicName: "سيدي خالد", RegionCode: 51},
	{Code: 1, Name: "Béni Abbès", ArabicName: "بني عباس", RegionCode: 52},
	{Code: 1, Name: "In Salah", ArabicName: "عين صالح", RegionCode: 53},
	{Code: 1, Name: "In Guezzam", ArabicName: "عين قزام", RegionCode: 54},
	{Code: 1, Name: "Touggourt", ArabicName: "تقرت", RegionCode: 55},
	{Code: 2, Name: "Témacine", ArabicName: "تماسين", RegionCode: 55},
	{Code: 1, Name: "Djanet", ArabicName: "جانت", RegionCode: 56},
	{Code: 1, Name: "El M'Ghair", ArabicName: "المغير", RegionCode: 57},
	{Code: 2, Name: "Djamaa", ArabicName: "جامعة", RegionCode: 57},
	{Code: 1, Name: "El Meniaa", ArabicName: "المنيعة", RegionCode: 58},
}
